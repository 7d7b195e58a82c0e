package domain

// SubmissionOverrides carries values the final step computed itself, so the
// submission payload uses them directly instead of waiting for them to
// propagate through the merged record.
type SubmissionOverrides struct {
	PhoneE164 string
	FullName  string
}

// SubmittedAccount is the read-only view of a successful registration, with
// every value in its canonical wire form.
type SubmittedAccount struct {
	AttemptID string
	Username  string
	FullName  string
	Email     string
	PhoneE164 string
	Birthdate string
}
