package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSet(t *testing.T) {
	var record RegistrationRecord

	require.NoError(t, record.Set(FieldGivenName, "Ada"))
	require.NoError(t, record.Set(FieldGender, "female"))
	require.NoError(t, record.Set(FieldPhoneNational, "07912 345678"))

	assert.Equal(t, "Ada", record.GivenName)
	assert.Equal(t, GenderFemale, record.Gender)
	assert.Equal(t, "07912 345678", record.PhoneNational)

	require.ErrorIs(t, record.Set("nonsense", "x"), ErrUnknownField)
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name   string
		given  string
		family string
		want   string
	}{
		{"both parts", "Ada", "Lovelace", "Ada Lovelace"},
		{"given only", "Ada", "", "Ada"},
		{"family only", "", "Lovelace", "Lovelace"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := RegistrationRecord{GivenName: tt.given, FamilyName: tt.family}
			assert.Equal(t, tt.want, record.FullName())
		})
	}
}
