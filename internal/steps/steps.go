// Package steps holds the per-step gates and the full submission-time
// revalidation. Checks are pure functions of the record: anything
// asynchronous (the username availability state) is the wizard's concern.
package steps

import (
	"fmt"
	"strings"
	"time"

	"github.com/biszaal/expenzez-sub001/internal/config"
	"github.com/biszaal/expenzez-sub001/internal/domain"
	"github.com/biszaal/expenzez-sub001/pkg/dates"
	"github.com/biszaal/expenzez-sub001/pkg/phone"

	"github.com/go-playground/validator/v10"
)

type Step string

const (
	StepIdentity    Step = "identity"
	StepPersonal    Step = "personal"
	StepCredentials Step = "credentials"
	StepAddress     Step = "address"
	StepPhone       Step = "phone"
)

// FlowManual is the five-step sequence for password-based registration.
var FlowManual = []Step{StepIdentity, StepPersonal, StepCredentials, StepAddress, StepPhone}

// FlowSocial skips Credentials: the social provider owns the password and
// supplied the email.
var FlowSocial = []Step{StepIdentity, StepPersonal, StepAddress, StepPhone}

// FlowFor picks the step sequence for a record's origin.
func FlowFor(origin domain.Origin) []Step {
	if origin == domain.OriginManual || origin == "" {
		return FlowManual
	}
	return FlowSocial
}

// passwordSymbols is the punctuation set the identity provider accepts; at
// least one is mandatory.
const passwordSymbols = "^$*.[]{}()?\"!@#%&/\\,><':;|_~`=+-"

type Validator struct {
	validate *validator.Validate
	minAge   int
	maxAge   int
	now      func() time.Time
}

func NewValidator(policy config.PolicyConfig) *Validator {
	v := validator.New()
	mustRegister(v, "username", usernameRule)
	mustRegister(v, "strongpassword", strongPasswordRule)

	return &Validator{
		validate: v,
		minAge:   policy.MinAge,
		maxAge:   policy.MaxAge,
		now:      time.Now,
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register " + tag + " validator failed")
	}
}

var usernameRule validator.Func = func(fl validator.FieldLevel) bool {
	return !strings.Contains(fl.Field().String(), "@")
}

var strongPasswordRule validator.Func = func(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// CanAdvance reports whether the record satisfies the step's constraints.
func (v *Validator) CanAdvance(step Step, record *domain.RegistrationRecord) bool {
	return len(v.ErrorsFor(step, record)) == 0
}

// ErrorsFor evaluates one step's constraints against the record.
func (v *Validator) ErrorsFor(step Step, record *domain.RegistrationRecord) []domain.FieldError {
	switch step {
	case StepIdentity:
		return v.identityErrors(record)
	case StepPersonal:
		return v.personalErrors(record)
	case StepCredentials:
		return v.credentialsErrors(record)
	case StepAddress:
		return v.addressErrors(record)
	case StepPhone:
		return v.phoneErrors(record)
	}
	return nil
}

// ErrorsForAll runs every step of the flow, in order. This is the single
// submission-time choke point: back-navigation never revalidates earlier
// steps, so an internally inconsistent record must be caught here.
func (v *Validator) ErrorsForAll(flow []Step, record *domain.RegistrationRecord) []domain.FieldError {
	var all []domain.FieldError
	for _, step := range flow {
		all = append(all, v.ErrorsFor(step, record)...)
	}
	return all
}

type identityView struct {
	GivenName  string `validate:"required"`
	FamilyName string `validate:"required"`
	Username   string `validate:"required,username"`
}

func (v *Validator) identityErrors(record *domain.RegistrationRecord) []domain.FieldError {
	view := identityView{
		GivenName:  strings.TrimSpace(record.GivenName),
		FamilyName: strings.TrimSpace(record.FamilyName),
		Username:   strings.TrimSpace(record.Username),
	}
	fields := map[string]domain.Field{
		"GivenName":  domain.FieldGivenName,
		"FamilyName": domain.FieldFamilyName,
		"Username":   domain.FieldUsername,
	}
	return v.structErrors(view, fields)
}

func (v *Validator) personalErrors(record *domain.RegistrationRecord) []domain.FieldError {
	var errs []domain.FieldError

	switch record.Gender {
	case domain.GenderMale, domain.GenderFemale, domain.GenderOther, domain.GenderUnspecified:
	case "":
		errs = append(errs, domain.FieldError{Field: domain.FieldGender, Message: "gender is required"})
	default:
		errs = append(errs, domain.FieldError{Field: domain.FieldGender, Message: "unknown gender value"})
	}

	if strings.TrimSpace(record.DateOfBirth) == "" {
		errs = append(errs, domain.FieldError{Field: domain.FieldDateOfBirth, Message: "date of birth is required"})
		return errs
	}

	dob, err := dates.Normalize(record.DateOfBirth)
	if err != nil {
		errs = append(errs, domain.FieldError{Field: domain.FieldDateOfBirth, Message: "not a valid date"})
		return errs
	}

	// The picker may already constrain the range; re-check regardless.
	age := dates.AgeAt(dob, v.now())
	if age < v.minAge {
		errs = append(errs, domain.FieldError{
			Field:   domain.FieldDateOfBirth,
			Message: fmt.Sprintf("you must be at least %d years old", v.minAge),
		})
	} else if age > v.maxAge {
		errs = append(errs, domain.FieldError{Field: domain.FieldDateOfBirth, Message: "not a plausible date of birth"})
	}
	return errs
}

type credentialsView struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required,strongpassword"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

func (v *Validator) credentialsErrors(record *domain.RegistrationRecord) []domain.FieldError {
	view := credentialsView{
		Email:           strings.TrimSpace(record.Email),
		Password:        record.Password,
		ConfirmPassword: record.ConfirmPassword,
	}
	fields := map[string]domain.Field{
		"Email":           domain.FieldEmail,
		"Password":        domain.FieldPassword,
		"ConfirmPassword": domain.FieldConfirmPassword,
	}
	return v.structErrors(view, fields)
}

type addressView struct {
	Line1       string `validate:"required"`
	City        string `validate:"required"`
	CountryCode string `validate:"required"`
}

func (v *Validator) addressErrors(record *domain.RegistrationRecord) []domain.FieldError {
	view := addressView{
		Line1:       strings.TrimSpace(record.AddressLine1),
		City:        strings.TrimSpace(record.City),
		CountryCode: strings.TrimSpace(record.CountryCode),
	}
	fields := map[string]domain.Field{
		"Line1":       domain.FieldAddressLine1,
		"City":        domain.FieldCity,
		"CountryCode": domain.FieldCountryCode,
	}
	return v.structErrors(view, fields)
}

// phoneErrors is the only gate that performs a fallible transformation
// rather than a presence check: the raw input must normalize under the
// selected country's profile.
func (v *Validator) phoneErrors(record *domain.RegistrationRecord) []domain.FieldError {
	if strings.TrimSpace(record.PhoneCountry) == "" {
		return []domain.FieldError{{Field: domain.FieldPhoneCountry, Message: "country is required"}}
	}
	profile, err := phone.Lookup(record.PhoneCountry)
	if err != nil {
		return []domain.FieldError{{Field: domain.FieldPhoneCountry, Message: "unsupported country"}}
	}
	if _, err := phone.Normalize(record.PhoneNational, profile); err != nil {
		return []domain.FieldError{{
			Field:   domain.FieldPhoneNational,
			Message: "expected format like " + profile.Example,
		}}
	}
	return nil
}

var tagMessages = map[string]string{
	"required":       "is required",
	"email":          "not a valid email address",
	"eqfield":        "passwords do not match",
	"username":       "must not contain @",
	"strongpassword": "must be 8+ characters with upper, lower, digit and symbol",
}

func (v *Validator) structErrors(view any, fields map[string]domain.Field) []domain.FieldError {
	err := v.validate.Struct(view)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []domain.FieldError{{Message: err.Error()}}
	}

	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out = append(out, domain.FieldError{Field: fields[fe.StructField()], Message: msg})
	}
	return out
}
