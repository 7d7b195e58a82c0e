package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/biszaal/expenzez-sub001/internal/availability"
	"github.com/biszaal/expenzez-sub001/internal/config"
	"github.com/biszaal/expenzez-sub001/internal/domain"
	"github.com/biszaal/expenzez-sub001/internal/identity"
	"github.com/biszaal/expenzez-sub001/internal/places"
	"github.com/biszaal/expenzez-sub001/internal/steps"
	"github.com/biszaal/expenzez-sub001/internal/submission"
	"github.com/biszaal/expenzez-sub001/internal/wizard"
	"github.com/biszaal/expenzez-sub001/pkg/logger"

	"go.uber.org/zap"
)

// fields prompted per step, in display order.
var stepFields = map[steps.Step][]domain.Field{
	steps.StepIdentity:    {domain.FieldGivenName, domain.FieldFamilyName, domain.FieldUsername},
	steps.StepPersonal:    {domain.FieldDateOfBirth, domain.FieldGender},
	steps.StepCredentials: {domain.FieldEmail, domain.FieldPassword, domain.FieldConfirmPassword},
	steps.StepAddress: {
		domain.FieldAddressLine1, domain.FieldAddressLine2, domain.FieldCity,
		domain.FieldStateOrProvince, domain.FieldPostalCode, domain.FieldCountryCode,
	},
	steps.StepPhone: {domain.FieldPhoneCountry, domain.FieldPhoneNational},
}

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	appLogger := logger.SetupLogger(cfg.Env, cfg.LogLevel)
	defer appLogger.Sync() //nolint:errcheck

	appLogger.Info("starting onboarding wizard", zap.String("env", cfg.Env))

	identityClient := identity.NewClient(cfg.Identity, appLogger)
	checker := availability.New(identityClient, cfg.Availability, appLogger)
	defer checker.Close()

	validator := steps.NewValidator(cfg.Policy)
	coordinator := submission.NewCoordinator(identityClient, validator, appLogger)

	var placesClient *places.Client
	if cfg.Places.Enabled {
		placesClient = places.NewClient(cfg.Places, appLogger)
	}

	w := wizard.New(validator, checker, coordinator, appLogger)
	if err := run(w, placesClient, appLogger); err != nil {
		appLogger.Error("wizard aborted", zap.Error(err))
		os.Exit(1)
	}
}

func run(w *wizard.Wizard, placesClient *places.Client, log *zap.Logger) error {
	in := bufio.NewScanner(os.Stdin)

	for w.Status() == wizard.StatusInProgress {
		step := w.CurrentStep()
		fmt.Printf("\n-- %s --\n", step)

		if step == steps.StepAddress && placesClient != nil {
			if query := prompt(in, "search address (empty for manual entry)"); query != "" {
				addr, err := placesClient.Lookup(context.Background(), query)
				if err != nil {
					// Lookup failure never blocks the wizard.
					fmt.Println("lookup failed, enter the address manually")
					log.Debug("place lookup failed", zap.Error(err))
				} else if err := w.ApplyPlace(*addr); err != nil {
					return err
				}
			}
		}

		record := w.Record()
		for _, field := range stepFields[step] {
			label := string(field)
			if current := currentValue(&record, field); current != "" {
				label = fmt.Sprintf("%s [%s]", field, current)
			}
			if value := prompt(in, label); value != "" {
				if err := w.UpdateField(field, value); err != nil {
					fmt.Println("  !", err)
				}
			}
		}

		if errs := w.Errors(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Println("  !", e)
			}
			continue
		}

		if step == steps.StepPhone {
			account, err := w.Submit(context.Background())
			if err != nil {
				fmt.Println("  !", err)
				continue
			}
			fmt.Printf("\nregistered %s (%s)\n", account.Username, account.PhoneE164)
			return nil
		}

		if err := w.Next(); err != nil {
			fmt.Println("  !", err)
		}
	}
	return nil
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func currentValue(record *domain.RegistrationRecord, field domain.Field) string {
	switch field {
	case domain.FieldGivenName:
		return record.GivenName
	case domain.FieldFamilyName:
		return record.FamilyName
	case domain.FieldUsername:
		return record.Username
	case domain.FieldEmail:
		return record.Email
	case domain.FieldDateOfBirth:
		return record.DateOfBirth
	case domain.FieldGender:
		return string(record.Gender)
	case domain.FieldPhoneCountry:
		return record.PhoneCountry
	case domain.FieldPhoneNational:
		return record.PhoneNational
	case domain.FieldAddressLine1:
		return record.AddressLine1
	case domain.FieldAddressLine2:
		return record.AddressLine2
	case domain.FieldCity:
		return record.City
	case domain.FieldStateOrProvince:
		return record.StateOrProvince
	case domain.FieldPostalCode:
		return record.PostalCode
	case domain.FieldCountryCode:
		return record.CountryCode
	}
	return ""
}
