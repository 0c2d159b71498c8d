package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/advocaid/auth-client/internal/model"
)

func TestFlowLabels(t *testing.T) {
	assert.Equal(t, model.LabelVerifyEmail, FlowVerifyEmail.Label())
	assert.Equal(t, model.LabelResetPassword, FlowResetPassword.Label())
	assert.Empty(t, FlowNone.Label())

	assert.Equal(t, "verify_email", FlowVerifyEmail.String())
	assert.Equal(t, "reset_password", FlowResetPassword.String())
	assert.Equal(t, "none", FlowNone.String())
}

func TestFlowForLabelRoundTrip(t *testing.T) {
	assert.Equal(t, FlowVerifyEmail, flowForLabel(model.LabelVerifyEmail))
	assert.Equal(t, FlowResetPassword, flowForLabel(model.LabelResetPassword))
	assert.Equal(t, FlowNone, flowForLabel("something_else"))
}

func TestRoutePrecedence(t *testing.T) {
	s := &Store{}
	assert.Equal(t, RouteLogin, s.Route())

	// A pending flow without an email is unreachable.
	s.flow = FlowVerifyEmail
	assert.Equal(t, RouteLogin, s.Route())

	s.verifyEmail = "asha@example.com"
	assert.Equal(t, RouteVerifyOTP, s.Route())

	// An authenticated session always wins.
	s.user = &model.User{ID: 1, Email: "asha@example.com"}
	assert.Equal(t, RouteDashboard, s.Route())
}
