// Package validation registers the welfare-specific validator tags used in
// request structs: barangay, classification, program_type and user_role.
package validation

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mesias/mswdo-backend/internal/welfare/domain"
	"github.com/mesias/mswdo-backend/pkg/httputil"
)

var (
	once    sync.Once
	initErr error
)

// Register installs the custom tags on the shared validator. Safe to call
// more than once.
func Register() error {
	once.Do(func() {
		tags := map[string]validator.Func{
			"barangay": func(fl validator.FieldLevel) bool {
				return domain.IsBarangay(fl.Field().String())
			},
			"classification": func(fl validator.FieldLevel) bool {
				return domain.Classification(fl.Field().String()).Valid()
			},
			"program_type": func(fl validator.FieldLevel) bool {
				return domain.ProgramType(fl.Field().String()).Valid()
			},
			"user_role": func(fl validator.FieldLevel) bool {
				return domain.Role(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range tags {
			if err := httputil.RegisterCustomValidation(tag, fn); err != nil {
				initErr = err
				return
			}
		}
	})
	return initErr
}

// MustRegister is Register for program start-up and tests.
func MustRegister() {
	if err := Register(); err != nil {
		panic(err)
	}
}
