// Package validation checks request payload shapes before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Validator wraps go-playground/validator with the service's rules and messages.
type Validator struct {
	validate *validator.Validate
}

// New builds a validator reporting fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// uuid_or_empty lets an update send "" to clear a reference.
	_ = v.RegisterValidation("uuid_or_empty", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || v.Var(s, "uuid") == nil
	})
	return &Validator{validate: v}
}

// Struct validates payload and returns a VALIDATION_FAILED error listing every bad field.
func (v *Validator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	fields := make([]apperrors.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, apperrors.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return apperrors.NewFieldValidationError(fields)
}

// Var validates a single value against tag, reporting it as field.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) || len(invalid) == 0 {
		return apperrors.NewValidationError("invalid "+field, nil)
	}
	fe := invalid[0]
	return apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: field, Message: messageFor(field, fe)}})
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe)
}

func messageFor(field string, fe validator.FieldError) string {
	label := humanize(field)
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Invalid email format"
	case "phone10":
		return "Phone number must be 10 digits"
	case "uuid", "uuid4", "uuid_or_empty":
		subject := strings.TrimSuffix(strings.ToLower(label), " id")
		if subject == "id" {
			return "Invalid ID"
		}
		return fmt.Sprintf("Invalid %s ID", subject)
	case "oneof":
		return fmt.Sprintf("Invalid %s", strings.ToLower(label))
	}
	return fmt.Sprintf("%s is invalid", label)
}

func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	out := b.String()
	return strings.ToUpper(out[:1]) + out[1:]
}
