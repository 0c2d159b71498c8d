package session

import "github.com/advocaid/auth-client/internal/model"

// VerificationFlow says what a pending one-time code is for. The browser
// build tracked this as a loose string field; here it is a closed enum so
// screens can branch exhaustively.
type VerificationFlow int

const (
	FlowNone VerificationFlow = iota
	FlowVerifyEmail
	FlowResetPassword
)

func (f VerificationFlow) String() string {
	switch f {
	case FlowVerifyEmail:
		return string(model.LabelVerifyEmail)
	case FlowResetPassword:
		return string(model.LabelResetPassword)
	default:
		return "none"
	}
}

// Label is the wire value sent with OTP requests for this flow.
func (f VerificationFlow) Label() model.OTPLabel {
	switch f {
	case FlowVerifyEmail:
		return model.LabelVerifyEmail
	case FlowResetPassword:
		return model.LabelResetPassword
	default:
		return ""
	}
}

func flowForLabel(label model.OTPLabel) VerificationFlow {
	switch label {
	case model.LabelVerifyEmail:
		return FlowVerifyEmail
	case model.LabelResetPassword:
		return FlowResetPassword
	default:
		return FlowNone
	}
}

// Client-side routes, kept identical to the web app's paths so deep links
// stay valid.
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteVerifyOTP      = "/verify-otp"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteDashboard      = "/dashboard"
)

// Route maps the current session state to the screen that should be shown.
// An authenticated session always wins over a pending verification flow;
// a flow is only reachable while it still has the email it was opened with.
func (s *Store) Route() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return RouteDashboard
	}
	if s.flow != FlowNone && s.verifyEmail != "" {
		return RouteVerifyOTP
	}
	return RouteLogin
}
