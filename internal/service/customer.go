package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"rental/internal/domain"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneFiller  = strings.NewReplacer(" ", "", "\t", "", "-", "")
)

// customerForm carries raw details through the validator. Field order
// fixes the order of reported errors.
type customerForm struct {
	Name  string `validate:"notblank"`
	Phone string `validate:"notblank,phone"`
	Email string `validate:"notblank,email_address"`
}

// CustomerValidator checks customer details against the booking form rules.
type CustomerValidator struct {
	v *validator.Validate
}

// customerRules are the custom tags used by customerForm.
var customerRules = []struct {
	tag string
	fn  validator.Func
}{
	{"notblank", validators.NotBlank},
	{"phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(phoneFiller.Replace(fl.Field().String()))
	}},
	{"email_address", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}},
}

// NewCustomerValidator creates a validator with the phone and email rules
// registered. It panics if a rule cannot be registered.
func NewCustomerValidator() *CustomerValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for _, rule := range customerRules {
		if err := v.RegisterValidation(rule.tag, rule.fn); err != nil {
			panic(fmt.Sprintf("register %q validation: %v", rule.tag, err))
		}
	}
	return &CustomerValidator{v: v}
}

// Validate returns the normalized details, or ValidationErrors with one
// entry per invalid field.
func (cv *CustomerValidator) Validate(name, phone, email string) (*domain.CustomerDetails, error) {
	form := customerForm{Name: name, Phone: phone, Email: email}

	err := cv.v.Struct(form)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		out := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			reason := ReasonInvalid
			if fe.Tag() == "notblank" {
				reason = ReasonRequired
			}
			out = append(out, ValidationError{Field: strings.ToLower(fe.Field()), Reason: reason})
		}
		return nil, out
	}

	return &domain.CustomerDetails{
		Name:  strings.TrimSpace(name),
		Phone: strings.TrimSpace(phone),
		Email: strings.TrimSpace(email),
	}, nil
}
