// Package repository persists the welfare domain in PostgreSQL.
//
// Every repository resolves its handle through database.DB.Conn, so a
// service that opened a transaction with WithinTx gets all of its
// statements on that transaction without passing it around.
package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/database"
	"github.com/mesias/mswdo-backend/pkg/errors"
)

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	clauses []string
	args    []any
}

// arg appends v and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) and(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET for a 1-based page.
func (w *where) page(page, perPage int) string {
	if page < 1 {
		page = 1
	}
	return " LIMIT " + w.arg(perPage) + " OFFSET " + w.arg((page-1)*perPage)
}

// scope restricts a query joined over beneficiaries (alias b) and their
// owning users (alias u) to what s may see. Callers short-circuit
// Scope.Empty before reaching the store.
func (w *where) scope(s domain.Scope) {
	switch {
	case s.All:
	case s.BeneficiaryID != "":
		w.and("b.id = " + w.arg(s.BeneficiaryID))
	default:
		w.and("lower(trim(u.address)) = ANY(" + w.arg(pq.Array(s.NormalizedBarangays())) + ")")
	}
}

// notFound maps sql.ErrNoRows to a NotFound for resource and passes
// everything else through the pq error mapping.
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NotFound(resource)
	}
	return database.MapError(err)
}

// affected returns NotFound for resource when res touched no rows.
func affected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound(resource)
	}
	return nil
}
