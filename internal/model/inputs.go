package model

// RegisterInput is the one canonical registration payload. The two
// registration screens (personal and business) post the same shape; the
// business-only fields are validated conditionally on ProfileType.
type RegisterInput struct {
	Name                 string      `json:"name" validate:"required"`
	Email                string      `json:"email" validate:"required,email"`
	Password             string      `json:"password" validate:"required,min=8"`
	PasswordConfirmation string      `json:"password_confirmation" validate:"required,eqfield=Password"`
	ProfileType          ProfileType `json:"profile_type" validate:"omitempty,oneof=personal business"`

	LawFirmName       string `json:"law_firm_name,omitempty" validate:"required_if=ProfileType business"`
	LicenseNumber     string `json:"license_number,omitempty" validate:"required_if=ProfileType business"`
	PracticeAreas     string `json:"practice_areas,omitempty" validate:"required_if=ProfileType business"`
	YearsOfExperience int    `json:"years_of_experience,omitempty" validate:"omitempty,gte=0,lte=70"`
	BarAssociation    string `json:"bar_association,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendOTPInput struct {
	Email string   `json:"email" validate:"required,email"`
	Label OTPLabel `json:"label" validate:"required,oneof=verify_email reset_password"`
}

type VerifyOTPInput struct {
	Email string   `json:"email" validate:"required,email"`
	OTP   string   `json:"otp" validate:"required,len=6,numeric"`
	Label OTPLabel `json:"label" validate:"required,oneof=verify_email reset_password"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordInput carries whichever reset credential the caller holds:
// a token lifted from a reset link's query parameters, or the one returned
// by a successful reset_password OTP verification. Both travel in Token.
type ResetPasswordInput struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type UpdateUpiInput struct {
	UpiID string `json:"upi_id" validate:"required"`
}
