// Package wizard is the onboarding state machine: it owns the cumulative
// registration record, the step cursor, and every transition between them.
// All transitions are applied atomically under one mutex; the only
// concurrent activity is the availability checker, consumed by snapshot.
package wizard

import (
	"context"
	"sync"

	"github.com/biszaal/expenzez-sub001/internal/availability"
	"github.com/biszaal/expenzez-sub001/internal/domain"
	"github.com/biszaal/expenzez-sub001/internal/places"
	"github.com/biszaal/expenzez-sub001/internal/social"
	"github.com/biszaal/expenzez-sub001/internal/steps"
	"github.com/biszaal/expenzez-sub001/pkg/phone"

	"go.uber.org/zap"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
)

// UsernameChecker is the slice of the availability checker the wizard needs.
type UsernameChecker interface {
	Submit(candidate string)
	Result() availability.Result
}

// Submitter performs the final normalization, revalidation and remote
// registration call.
type Submitter interface {
	Submit(ctx context.Context, record domain.RegistrationRecord, overrides *domain.SubmissionOverrides) (*domain.SubmittedAccount, error)
}

type Wizard struct {
	validator *steps.Validator
	checker   UsernameChecker
	submitter Submitter
	logger    *zap.Logger

	mu       sync.Mutex
	flow     []steps.Step
	index    int
	status   Status
	record   domain.RegistrationRecord
	readOnly map[domain.Field]bool
	account  *domain.SubmittedAccount
}

// New creates a wizard for the manual registration flow with an empty record.
func New(validator *steps.Validator, checker UsernameChecker, submitter Submitter, logger *zap.Logger) *Wizard {
	return &Wizard{
		validator: validator,
		checker:   checker,
		submitter: submitter,
		logger:    logger,
		flow:      steps.FlowManual,
		status:    StatusInProgress,
		record:    domain.RegistrationRecord{Origin: domain.OriginManual},
		readOnly:  map[domain.Field]bool{},
	}
}

// NewFromSeed creates a wizard for the complete-profile-after-social-sign-in
// flow. Every seed field may be absent; a verified provider email becomes
// read only.
func NewFromSeed(validator *steps.Validator, checker UsernameChecker, submitter Submitter, logger *zap.Logger, seed social.Seed, origin domain.Origin) *Wizard {
	w := &Wizard{
		validator: validator,
		checker:   checker,
		submitter: submitter,
		logger:    logger,
		flow:      steps.FlowSocial,
		status:    StatusInProgress,
		record:    domain.RegistrationRecord{Origin: origin},
		readOnly:  map[domain.Field]bool{},
	}
	seed.Apply(&w.record)
	if seed.EmailVerified && seed.Email != "" {
		w.readOnly[domain.FieldEmail] = true
	}
	return w
}

// UpdateField merges one edit into the record. Edits are never blocked by
// validity; only read-only fields and terminal states reject them. Username
// edits feed the availability checker.
func (w *Wizard) UpdateField(field domain.Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editableLocked(); err != nil {
		return err
	}
	if w.readOnly[field] {
		return domain.ErrFieldReadOnly
	}
	if err := w.record.Set(field, value); err != nil {
		return err
	}
	if field == domain.FieldUsername {
		w.checker.Submit(value)
	}
	return nil
}

// ApplyPlace writes a structured place-lookup result into the same address
// fields manual entry uses; the address step validates both paths alike.
func (w *Wizard) ApplyPlace(addr places.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editableLocked(); err != nil {
		return err
	}
	w.record.AddressLine1 = addr.Line1
	w.record.AddressLine2 = addr.Line2
	w.record.City = addr.City
	w.record.StateOrProvince = addr.StateOrProvince
	w.record.PostalCode = addr.PostalCode
	w.record.CountryCode = addr.CountryCode
	return nil
}

// Next advances to the following step if the current step's gate holds.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editableLocked(); err != nil {
		return err
	}
	if !w.canAdvanceLocked() {
		return domain.ErrStepGateFailed
	}
	if w.index == len(w.flow)-1 {
		// The final step completes via Submit, not Next.
		return domain.ErrStepGateFailed
	}
	w.index++
	return nil
}

// Back returns to the previous step. Nothing is cleared or revalidated.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editableLocked(); err != nil {
		return err
	}
	if w.index == 0 {
		return domain.ErrNoPreviousStep
	}
	w.index--
	return nil
}

// CanAdvance reports whether Next (or Submit, on the final step) is
// currently permitted.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvanceLocked()
}

// Errors returns the current step's failing constraints, for display.
func (w *Wizard) Errors() []domain.FieldError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filterReadOnly(w.validator.ErrorsFor(w.flow[w.index], &w.record))
}

// CurrentStep returns the step the cursor is on.
func (w *Wizard) CurrentStep() steps.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flow[w.index]
}

// StepIndex returns the zero-based cursor position.
func (w *Wizard) StepIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Status returns the wizard's lifecycle state.
func (w *Wizard) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Record returns a copy of the in-progress record.
func (w *Wizard) Record() domain.RegistrationRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

// Account returns the submitted account once the wizard is terminal.
func (w *Wizard) Account() *domain.SubmittedAccount {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account
}

// Submit finishes the wizard from the final step. The freshly normalized
// phone number and full name travel as overrides so the payload never
// depends on state that has not propagated yet. On failure the record and
// cursor are untouched and the user corrects and resubmits.
func (w *Wizard) Submit(ctx context.Context) (*domain.SubmittedAccount, error) {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.index != len(w.flow)-1 || !w.canAdvanceLocked() {
		w.mu.Unlock()
		return nil, domain.ErrStepGateFailed
	}

	record := w.record
	overrides := &domain.SubmissionOverrides{
		FullName: record.FullName(),
	}
	if profile, err := phone.Lookup(record.PhoneCountry); err == nil {
		if e164, err := phone.Normalize(record.PhoneNational, profile); err == nil {
			overrides.PhoneE164 = e164
		}
	}
	w.status = StatusSubmitting
	w.mu.Unlock()

	// The remote call runs outside the lock; edits are rejected meanwhile
	// by the Submitting status.
	account, err := w.submitter.Submit(ctx, record, overrides)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.status = StatusInProgress
		return nil, err
	}
	w.status = StatusSubmitted
	w.record.PhoneE164 = account.PhoneE164
	w.record.DateOfBirth = account.Birthdate
	w.account = account
	w.logger.Info("registration submitted", zap.String("username", account.Username))
	return account, nil
}

func (w *Wizard) editableLocked() error {
	switch w.status {
	case StatusSubmitting:
		return domain.ErrWizardSubmitting
	case StatusSubmitted:
		return domain.ErrWizardSubmitted
	}
	return nil
}

func (w *Wizard) canAdvanceLocked() bool {
	errs := w.filterReadOnly(w.validator.ErrorsFor(w.flow[w.index], &w.record))
	if len(errs) > 0 {
		return false
	}
	if w.flow[w.index] == steps.StepIdentity {
		// A pending check or a definitive "taken" blocks; a failed check
		// does not, since the backend re-verifies at submission.
		switch w.checker.Result().State {
		case availability.StateChecking, availability.StateTaken:
			return false
		}
	}
	return true
}

func (w *Wizard) filterReadOnly(errs []domain.FieldError) []domain.FieldError {
	if len(w.readOnly) == 0 {
		return errs
	}
	out := errs[:0]
	for _, e := range errs {
		if !w.readOnly[e.Field] {
			out = append(out, e)
		}
	}
	return out
}
