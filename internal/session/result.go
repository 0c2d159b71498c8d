package session

// Result is the uniform outcome every session action returns. Actions
// never let transport errors escape; a failure is always expressed here.
type Result struct {
	Success bool
	Message string
}

func failure(message string) Result {
	return Result{Success: false, Message: message}
}

// LoginResult adds the verification branch: an unverified login succeeds
// without establishing a session, and the caller routes to the OTP screen.
type LoginResult struct {
	Result
	IsVerified bool
}

// VerifyOTPResult carries the reset token the server hands back when a
// reset_password code is verified; the reset form posts it as its
// credential.
type VerifyOTPResult struct {
	Result
	ResetToken string
}
