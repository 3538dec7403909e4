package entity

import "time"

// Registration steps. A session is created in StepCredentials and never exists in step 0.
const (
	StepCredentials = 1
	StepProfile     = 2
	StepCommitted   = 3
)

// RegistrationStep1 holds the credentials captured at step 1.
type RegistrationStep1 struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegistrationStep2 holds the profile captured at step 2.
type RegistrationStep2 struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// RegistrationSession stages a prospective user across the three registration steps.
// Sessions have no expiry.
type RegistrationSession struct {
	ID          string             `json:"id"`
	CurrentStep int                `json:"currentStep"`
	Step1       RegistrationStep1  `json:"step1"`
	Step2       *RegistrationStep2 `json:"step2,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ReachedProfile reports whether step 2 was completed.
func (s *RegistrationSession) ReachedProfile() bool {
	return s.CurrentStep >= StepProfile && s.Step2 != nil
}
