package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/actor"
)

const exportSheet = "Applications"

type exportColumn struct {
	header string
	width  float64
	value  func(*domain.ApplicationView) any
}

var exportColumns = []exportColumn{
	{"Application ID", 38, func(a *domain.ApplicationView) any { return a.ID }},
	{"Beneficiary", 28, func(a *domain.ApplicationView) any { return beneficiaryName(a) }},
	{"Barangay", 24, func(a *domain.ApplicationView) any { return a.BeneficiaryBarangay }},
	{"Classification", 16, func(a *domain.ApplicationView) any { return string(a.Classification) }},
	{"Program", 30, func(a *domain.ApplicationView) any { return a.ProgramName }},
	{"Program Type", 18, func(a *domain.ApplicationView) any { return string(a.ProgramType) }},
	{"Status", 16, func(a *domain.ApplicationView) any { return string(a.Status) }},
	{"Submitted", 20, func(a *domain.ApplicationView) any { return formatTime(&a.CreatedAt) }},
	{"BHW Verified", 20, func(a *domain.ApplicationView) any { return formatTime(a.BHWVerifiedAt) }},
	{"MSWDO Approved", 20, func(a *domain.ApplicationView) any { return formatTime(a.MSWDOApprovedAt) }},
	{"Denial Reason", 40, func(a *domain.ApplicationView) any { return deref(a.DenialReason) }},
}

// Export renders the caller's visible applications as an XLSX workbook.
func (e *Engine) Export(ctx context.Context, a *actor.Actor, filter domain.ApplicationFilter) ([]byte, error) {
	if err := requireRole(a, domain.Office...); err != nil {
		return nil, err
	}
	scope, err := e.scopes.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	apps, err := e.apps.ListAll(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	e.logger.Info().Str("user_id", a.ID).Int("rows", len(apps)).Msg("application register exported")
	return GenerateApplicationExport(apps)
}

// GenerateApplicationExport writes apps to a single-sheet workbook with a
// styled header row.
func GenerateApplicationExport(apps []*domain.ApplicationView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, col.header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, app := range apps {
		for c, col := range exportColumns {
			v := col.value(app)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
