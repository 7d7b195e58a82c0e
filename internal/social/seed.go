// Package social extracts the wizard pre-fill seed from a social provider's
// ID token. The token is decoded, not verified: the client holds no provider
// keys, and the backend re-verifies the token during registration.
package social

import (
	"strings"

	"github.com/biszaal/expenzez-sub001/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Seed carries whatever identity data the provider supplied. Every field
// may be empty; the wizard must work with a fully absent seed.
type Seed struct {
	Name          string
	GivenName     string
	FamilyName    string
	Email         string
	EmailVerified bool
}

// FromIDToken decodes the provider ID token's claims into a Seed.
func FromIDToken(rawToken string) (Seed, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return Seed{}, errors.Wrap(err, "parse id token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Seed{}, errors.New("unexpected claims type in id token")
	}

	seed := Seed{
		Name:       stringClaim(claims, "name"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
		Email:      stringClaim(claims, "email"),
	}

	switch v := claims["email_verified"].(type) {
	case bool:
		seed.EmailVerified = v
	case string:
		// Apple encodes the flag as the string "true".
		seed.EmailVerified = v == "true"
	}

	// Some providers send only the display name; split it so the identity
	// step starts populated.
	if seed.GivenName == "" && seed.FamilyName == "" && seed.Name != "" {
		parts := strings.Fields(seed.Name)
		seed.GivenName = parts[0]
		if len(parts) > 1 {
			seed.FamilyName = strings.Join(parts[1:], " ")
		}
	}

	return seed, nil
}

// Apply writes the seed's non-empty fields into a fresh record.
func (s Seed) Apply(record *domain.RegistrationRecord) {
	if s.GivenName != "" {
		record.GivenName = s.GivenName
	}
	if s.FamilyName != "" {
		record.FamilyName = s.FamilyName
	}
	if s.Email != "" {
		record.Email = s.Email
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
