// Package submission assembles the final registration payload, runs the
// full cross-step revalidation, calls the identity provider and classifies
// whatever it answers. It is the one place the whole record is verified
// again: back-navigation never revalidates completed steps.
package submission

import (
	"context"
	"strings"

	"github.com/biszaal/expenzez-sub001/internal/domain"
	"github.com/biszaal/expenzez-sub001/internal/identity"
	"github.com/biszaal/expenzez-sub001/internal/steps"
	"github.com/biszaal/expenzez-sub001/pkg/dates"
	"github.com/biszaal/expenzez-sub001/pkg/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registrar is the remote registration operation.
type Registrar interface {
	Register(ctx context.Context, payload identity.RegistrationPayload, attemptID string) error
}

type Coordinator struct {
	registrar Registrar
	validator *steps.Validator
	logger    *zap.Logger
}

func NewCoordinator(registrar Registrar, validator *steps.Validator, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		registrar: registrar,
		validator: validator,
		logger:    logger,
	}
}

// Submit normalizes, revalidates every step of the record's flow and calls
// the remote registration. The record is never mutated: on any failure the
// caller keeps it as-is and the user corrects a field and resubmits.
func (c *Coordinator) Submit(ctx context.Context, record domain.RegistrationRecord, overrides *domain.SubmissionOverrides) (*domain.SubmittedAccount, error) {
	working := record

	birthdate, err := dates.Normalize(working.DateOfBirth)
	if err == nil {
		working.DateOfBirth = birthdate.String()
	}

	e164 := ""
	if overrides != nil {
		e164 = overrides.PhoneE164
	}
	if e164 == "" {
		if profile, perr := phone.Lookup(working.PhoneCountry); perr == nil {
			if normalized, nerr := phone.Normalize(working.PhoneNational, profile); nerr == nil {
				e164 = normalized
			}
		}
	}
	working.PhoneE164 = e164

	flow := steps.FlowFor(working.Origin)
	if errs := c.validator.ErrorsForAll(flow, &working); len(errs) > 0 {
		c.logger.Debug("submission blocked by revalidation", zap.Int("errors", len(errs)))
		return nil, &domain.ValidationError{Fields: errs}
	}

	fullName := working.FullName()
	if overrides != nil && overrides.FullName != "" {
		fullName = overrides.FullName
	}

	payload := buildPayload(&working, fullName)
	attemptID := uuid.NewString()

	if err := c.registrar.Register(ctx, payload, attemptID); err != nil {
		classified := Classify(err)
		c.logger.Warn("registration rejected",
			zap.String("attempt_id", attemptID),
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return nil, classified
	}

	c.logger.Info("registration accepted",
		zap.String("attempt_id", attemptID),
		zap.String("username", payload.Username))

	return &domain.SubmittedAccount{
		AttemptID: attemptID,
		Username:  payload.Username,
		FullName:  payload.Name,
		Email:     payload.Email,
		PhoneE164: payload.PhoneNumber,
		Birthdate: payload.Birthdate,
	}, nil
}

func buildPayload(record *domain.RegistrationRecord, fullName string) identity.RegistrationPayload {
	payload := identity.RegistrationPayload{
		Username:    strings.TrimSpace(record.Username),
		Name:        fullName,
		GivenName:   strings.TrimSpace(record.GivenName),
		FamilyName:  strings.TrimSpace(record.FamilyName),
		Email:       strings.TrimSpace(record.Email),
		PhoneNumber: record.PhoneE164,
		Birthdate:   record.DateOfBirth,
		Gender:      string(record.Gender),
		Origin:      string(record.Origin),
	}
	if record.Origin == domain.OriginManual {
		payload.Password = record.Password
	}
	payload.Address.Line1 = strings.TrimSpace(record.AddressLine1)
	payload.Address.Line2 = strings.TrimSpace(record.AddressLine2)
	payload.Address.City = strings.TrimSpace(record.City)
	payload.Address.Region = strings.TrimSpace(record.StateOrProvince)
	payload.Address.PostalCode = strings.TrimSpace(record.PostalCode)
	payload.Address.Country = strings.TrimSpace(record.CountryCode)
	return payload
}
