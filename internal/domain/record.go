package domain

type Origin string

const (
	OriginManual       Origin = "manual"
	OriginSocialApple  Origin = "social:apple"
	OriginSocialGoogle Origin = "social:google"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// Field identifies a single editable slot of the registration record.
type Field string

const (
	FieldGivenName       Field = "givenName"
	FieldFamilyName      Field = "familyName"
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldDateOfBirth     Field = "dateOfBirth"
	FieldGender          Field = "gender"
	FieldPhoneCountry    Field = "phoneCountry"
	FieldPhoneNational   Field = "phoneNational"
	FieldAddressLine1    Field = "addressLine1"
	FieldAddressLine2    Field = "addressLine2"
	FieldCity            Field = "city"
	FieldStateOrProvince Field = "stateOrProvince"
	FieldPostalCode      Field = "postalCode"
	FieldCountryCode     Field = "countryCode"
)

// RegistrationRecord is the single aggregate the wizard builds up across
// steps. Values are stored as entered; normalized forms (PhoneE164,
// DateOfBirth in wire form) are only written after successful normalization.
type RegistrationRecord struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Username   string `json:"username"`

	Email           string `json:"email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`

	DateOfBirth string `json:"date_of_birth"`
	Gender      Gender `json:"gender"`

	PhoneCountry  string `json:"phone_country"`
	PhoneNational string `json:"phone_national"`
	PhoneE164     string `json:"phone_e164"`

	AddressLine1    string `json:"address_line1"`
	AddressLine2    string `json:"address_line2"`
	City            string `json:"city"`
	StateOrProvince string `json:"state_or_province"`
	PostalCode      string `json:"postal_code"`
	CountryCode     string `json:"country_code"`

	Origin Origin `json:"origin"`
}

// Set writes value into the slot named by field. Unknown fields are
// reported so the wizard can reject them instead of silently dropping input.
func (r *RegistrationRecord) Set(field Field, value string) error {
	switch field {
	case FieldGivenName:
		r.GivenName = value
	case FieldFamilyName:
		r.FamilyName = value
	case FieldUsername:
		r.Username = value
	case FieldEmail:
		r.Email = value
	case FieldPassword:
		r.Password = value
	case FieldConfirmPassword:
		r.ConfirmPassword = value
	case FieldDateOfBirth:
		r.DateOfBirth = value
	case FieldGender:
		r.Gender = Gender(value)
	case FieldPhoneCountry:
		r.PhoneCountry = value
	case FieldPhoneNational:
		r.PhoneNational = value
	case FieldAddressLine1:
		r.AddressLine1 = value
	case FieldAddressLine2:
		r.AddressLine2 = value
	case FieldCity:
		r.City = value
	case FieldStateOrProvince:
		r.StateOrProvince = value
	case FieldPostalCode:
		r.PostalCode = value
	case FieldCountryCode:
		r.CountryCode = value
	default:
		return ErrUnknownField
	}
	return nil
}

// FullName is the concatenated display name the identity provider expects.
func (r *RegistrationRecord) FullName() string {
	if r.GivenName == "" {
		return r.FamilyName
	}
	if r.FamilyName == "" {
		return r.GivenName
	}
	return r.GivenName + " " + r.FamilyName
}
