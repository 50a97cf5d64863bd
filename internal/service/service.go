// Package service holds the business rules of kimoncrm. Services validate
// requests, call repositories and integrations, and publish events.
package service

import (
	"errors"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"

	"github.com/asaskevich/govalidator"
)

// validate runs the govalidator `valid` tags of req and returns a
// *domain.ValidationError keyed by field.
func validate(req any) error {
	if _, err := govalidator.ValidateStruct(req); err != nil {
		fields := govalidator.ErrorsByField(err)
		if len(fields) == 0 {
			fields = map[string]string{"request": err.Error()}
		}
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// optional trims s and returns nil when it is empty.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// isNotFound is used where a missing row is a normal outcome.
func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
