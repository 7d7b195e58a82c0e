package submission

import (
	"errors"
	"strings"

	"github.com/biszaal/expenzez-sub001/internal/domain"
	"github.com/biszaal/expenzez-sub001/internal/identity"
)

// Classify maps a failed registration call onto the fixed error taxonomy.
// The provider's vocabulary is only partially structured, so matching works
// on exception-style codes first and message substrings second, always
// preferring the most specific category.
func Classify(err error) *domain.SubmissionError {
	var backend *identity.BackendError
	if !errors.As(err, &backend) {
		return domain.NewSubmissionError(domain.SubmissionFailed, "",
			"registration could not be completed, please try again", err)
	}

	code := backend.Code
	message := strings.ToLower(backend.Message)

	switch {
	case code == "UsernameExistsException",
		strings.Contains(message, "username") && taken(message):
		return domain.NewSubmissionError(domain.SubmissionDuplicateUsername, domain.FieldUsername,
			"this username is already registered, choose another", err)

	case code == "EmailExistsException",
		code == "AliasExistsException" && strings.Contains(message, "email"),
		strings.Contains(message, "email") && taken(message):
		return domain.NewSubmissionError(domain.SubmissionDuplicateEmail, domain.FieldEmail,
			"an account with this email already exists", err)

	case code == "PhoneNumberExistsException",
		code == "AliasExistsException" && strings.Contains(message, "phone"),
		strings.Contains(message, "phone") && taken(message):
		return domain.NewSubmissionError(domain.SubmissionDuplicatePhone, domain.FieldPhoneNational,
			"an account with this phone number already exists", err)

	case strings.Contains(message, "invalid phone number"),
		code == "InvalidParameterException" && strings.Contains(message, "phone"):
		return domain.NewSubmissionError(domain.SubmissionInvalidPhone, domain.FieldPhoneNational,
			"the phone number was rejected, check the number and country", err)

	case code == "InvalidPasswordException",
		strings.Contains(message, "password") && strings.Contains(message, "policy"):
		return domain.NewSubmissionError(domain.SubmissionPasswordPolicy, domain.FieldPassword,
			"the password does not meet the account policy", err)

	case code == "InvalidParameterException", backend.StatusCode == 400:
		return domain.NewSubmissionError(domain.SubmissionInvalidParameter, "",
			"some of the provided details were rejected", err)
	}

	return domain.NewSubmissionError(domain.SubmissionFailed, "",
		"registration could not be completed, please try again", err)
}

func taken(message string) bool {
	return strings.Contains(message, "exists") ||
		strings.Contains(message, "already") ||
		strings.Contains(message, "taken")
}
