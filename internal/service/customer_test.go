package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerValidator_Valid(t *testing.T) {
	cv := NewCustomerValidator()

	details, err := cv.Validate("  Jane Doe ", "+94771234567", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", details.Name)
	assert.Equal(t, "+94771234567", details.Phone)

	// Spaces and hyphens are ignored when checking the phone number.
	_, err = cv.Validate("Jane", "077-123 4567", "jane@example.com")
	assert.NoError(t, err)
}

func TestCustomerValidator_Invalid(t *testing.T) {
	cv := NewCustomerValidator()

	cases := []struct {
		name               string
		cname, phone, mail string
		want               ValidationErrors
	}{
		{
			name: "invalid email", cname: "Jane Doe", phone: "+94771234567", mail: "not-an-email",
			want: ValidationErrors{{Field: "email", Reason: ReasonInvalid}},
		},
		{
			name: "all blank", cname: " ", phone: "", mail: "\t",
			want: ValidationErrors{
				{Field: "name", Reason: ReasonRequired},
				{Field: "phone", Reason: ReasonRequired},
				{Field: "email", Reason: ReasonRequired},
			},
		},
		{
			name: "short phone", cname: "Jane", phone: "12345", mail: "jane@example.com",
			want: ValidationErrors{{Field: "phone", Reason: ReasonInvalid}},
		},
		{
			name: "letters in phone", cname: "Jane", phone: "+9477123456x", mail: "jane@example.com",
			want: ValidationErrors{{Field: "phone", Reason: ReasonInvalid}},
		},
		{
			name: "too long phone", cname: "Jane", phone: "1234567890123456", mail: "jane@example.com",
			want: ValidationErrors{{Field: "phone", Reason: ReasonInvalid}},
		},
		{
			name: "email without dot", cname: "Jane", phone: "0771234567", mail: "jane@example",
			want: ValidationErrors{{Field: "email", Reason: ReasonInvalid}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details, err := cv.Validate(tc.cname, tc.phone, tc.mail)
			assert.Nil(t, details)
			assert.ErrorIs(t, err, ErrValidation)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tc.want, verrs)
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	assert.Equal(t, "Name is required", ValidationError{Field: "name", Reason: ReasonRequired}.Message())
	assert.Equal(t, "Please enter a valid phone number", ValidationError{Field: "phone", Reason: ReasonInvalid}.Message())
	assert.Equal(t, "Please enter a valid email address", ValidationError{Field: "email", Reason: ReasonInvalid}.Message())
}

func TestNewCustomerValidator_PanicsOnBadRule(t *testing.T) {
	assert.NotPanics(t, func() { NewCustomerValidator() })

	saved := customerRules
	t.Cleanup(func() { customerRules = saved })
	customerRules = append(customerRules[:len(customerRules):len(customerRules)], customerRules[0])
	customerRules[len(customerRules)-1].tag = ""

	assert.PanicsWithValue(t,
		`register "" validation: function Key cannot be empty`,
		func() { NewCustomerValidator() })
}
