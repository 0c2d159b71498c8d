package model

import "time"

type ProfileType string

const (
	ProfileTypePersonal ProfileType = "personal"
	ProfileTypeBusiness ProfileType = "business"
)

// OTPLabel tags what a pending one-time code is for. The server keys its
// verification behavior on the same strings.
type OTPLabel string

const (
	LabelVerifyEmail   OTPLabel = "verify_email"
	LabelResetPassword OTPLabel = "reset_password"
)

// User is the canonical account record as the API returns it. The client
// never patches it field by field; every mutation is followed by a full
// refetch so this struct is always a wholesale server snapshot.
type User struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	EmailVerifiedAt *time.Time  `json:"email_verified_at"`
	UpiID           *string     `json:"upi_id"`
	ProfileType     ProfileType `json:"profile_type"`

	// Business (professional) profile fields, absent for personal accounts.
	LawFirmName       string `json:"law_firm_name,omitempty"`
	LicenseNumber     string `json:"license_number,omitempty"`
	PracticeAreas     string `json:"practice_areas,omitempty"`
	YearsOfExperience int    `json:"years_of_experience,omitempty"`
	BarAssociation    string `json:"bar_association,omitempty"`
}

func (u *User) IsEmailVerified() bool {
	return u != nil && u.EmailVerifiedAt != nil
}
