package stubapi_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advocaid/auth-client/internal/configs"
	"github.com/advocaid/auth-client/internal/credentials"
	"github.com/advocaid/auth-client/internal/model"
	"github.com/advocaid/auth-client/internal/session"
	"github.com/advocaid/auth-client/internal/stubapi"
	"github.com/advocaid/auth-client/internal/transport"
)

var (
	codeRe  = regexp.MustCompile(`\b(\d{6})\b`)
	tokenRe = regexp.MustCompile(`token=([0-9a-fA-F-]+)`)
	dbSeq   atomic.Int64
)

// captureMailer records outgoing mail so tests can read the codes and
// reset links a real user would receive in their inbox.
type captureMailer struct {
	mu     sync.Mutex
	bodies []string
}

func (m *captureMailer) SendPlainTextEmail(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()
	return nil
}

func (m *captureMailer) SendHTMLEmail(ctx context.Context, to, subject, body string) error {
	return m.SendPlainTextEmail(ctx, to, subject, body)
}

func (m *captureMailer) lastBody(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.bodies, "expected at least one email")
	return m.bodies[len(m.bodies)-1]
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	match := codeRe.FindStringSubmatch(m.lastBody(t))
	require.Len(t, match, 2, "email body carries no 6-digit code")
	return match[1]
}

func (m *captureMailer) lastResetToken(t *testing.T) string {
	t.Helper()
	match := tokenRe.FindStringSubmatch(m.lastBody(t))
	require.Len(t, match, 2, "email body carries no reset link token")
	return match[1]
}

type env struct {
	store   *session.Store
	mailer  *captureMailer
	baseURL string
}

// startEnv boots the stub on a random localhost port, backed by a
// per-test in-memory database, and returns a client session wired to it.
func startEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("JWT_SECRET", "e2e-test-secret")

	cfg := configs.Default("development")
	cfg.Stub.Driver = "sqlite"
	cfg.Stub.SQLiteDSN = fmt.Sprintf("file:e2e%d?mode=memory&cache=shared", dbSeq.Add(1))

	users, err := stubapi.OpenDatabase(cfg)
	require.NoError(t, err)

	mailer := &captureMailer{}
	app := stubapi.New(cfg, users, stubapi.NewMemoryCache(), mailer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		if err := app.Listener(ln); err != nil {
			t.Logf("stub server stopped: %v", err)
		}
	}()
	t.Cleanup(func() { _ = app.Shutdown() })

	baseURL := "http://" + ln.Addr().String() + "/api"
	creds := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	api, err := transport.NewClient(baseURL, 10*time.Second, creds)
	require.NoError(t, err)

	return &env{
		store:   session.NewStore(api, creds),
		mailer:  mailer,
		baseURL: baseURL,
	}
}

func registration(email string) model.RegisterInput {
	return model.RegisterInput{
		Name:                 "Asha Rao",
		Email:                email,
		Password:             "initial-password",
		PasswordConfirmation: "initial-password",
	}
}

// registerVerified walks an account through registration and email
// verification, leaving the session authenticated.
func registerVerified(t *testing.T, e *env, email string) {
	t.Helper()
	ctx := context.Background()

	res := e.store.Register(ctx, registration(email))
	require.True(t, res.Success, res.Message)

	verify := e.store.VerifyOTP(ctx, model.VerifyOTPInput{
		Email: email,
		OTP:   e.mailer.lastCode(t),
		Label: model.LabelVerifyEmail,
	})
	require.True(t, verify.Success, verify.Message)
}

func TestRegistrationToDashboardJourney(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "asha@example.com"

	res := e.store.Register(ctx, registration(email))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, session.RouteVerifyOTP, e.store.Route())

	verify := e.store.VerifyOTP(ctx, model.VerifyOTPInput{
		Email: email,
		OTP:   e.mailer.lastCode(t),
		Label: model.LabelVerifyEmail,
	})
	require.True(t, verify.Success, verify.Message)
	assert.Equal(t, session.RouteDashboard, e.store.Route())

	user := e.store.User()
	require.NotNil(t, user)
	assert.True(t, user.IsEmailVerified())
	assert.NotEmpty(t, e.store.Token())

	upi := e.store.UpdateUpiID(ctx, "asha@upi")
	require.True(t, upi.Success, upi.Message)
	require.NotNil(t, e.store.User().UpiID)
	assert.Equal(t, "asha@upi", *e.store.User().UpiID)

	logout := e.store.Logout(ctx)
	require.True(t, logout.Success)
	assert.Equal(t, session.RouteLogin, e.store.Route())

	login := e.store.Login(ctx, model.LoginInput{Email: email, Password: "initial-password"})
	require.True(t, login.Success, login.Message)
	assert.True(t, login.IsVerified)
	assert.Equal(t, session.RouteDashboard, e.store.Route())
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()

	first := e.store.Register(ctx, registration("dup@example.com"))
	require.True(t, first.Success, first.Message)

	second := e.store.Register(ctx, registration("dup@example.com"))
	assert.False(t, second.Success)
	assert.Equal(t, "Email already exists", second.Message)
}

func TestUnverifiedLoginTriggersOTPFlow(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "ravi@example.com"

	res := e.store.Register(ctx, registration(email))
	require.True(t, res.Success, res.Message)

	login := e.store.Login(ctx, model.LoginInput{Email: email, Password: "initial-password"})
	require.True(t, login.Success, login.Message)
	assert.False(t, login.IsVerified)
	assert.Empty(t, e.store.Token())
	assert.Equal(t, session.RouteVerifyOTP, e.store.Route())

	// The login attempt triggered a fresh code.
	verify := e.store.VerifyOTP(ctx, model.VerifyOTPInput{
		Email: email,
		OTP:   e.mailer.lastCode(t),
		Label: model.LabelVerifyEmail,
	})
	require.True(t, verify.Success, verify.Message)
	assert.Equal(t, session.RouteDashboard, e.store.Route())
}

func TestWrongLoginPassword(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	registerVerified(t, e, "asha@example.com")
	require.True(t, e.store.Logout(ctx).Success)

	login := e.store.Login(ctx, model.LoginInput{Email: "asha@example.com", Password: "wrong-password"})
	assert.False(t, login.Success)
	assert.Equal(t, "Invalid email or password", login.Message)
	assert.Empty(t, e.store.Token())
}

func TestPasswordResetViaOTPScreen(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "asha@example.com"
	registerVerified(t, e, email)
	require.True(t, e.store.Logout(ctx).Success)

	forgot := e.store.ForgotPassword(ctx, email)
	require.True(t, forgot.Success, forgot.Message)
	assert.Equal(t, session.RouteVerifyOTP, e.store.Route())

	verify := e.store.VerifyOTP(ctx, model.VerifyOTPInput{
		Email: email,
		OTP:   e.mailer.lastCode(t),
		Label: model.LabelResetPassword,
	})
	require.True(t, verify.Success, verify.Message)
	require.NotEmpty(t, verify.ResetToken)

	reset := e.store.ResetPassword(ctx, model.ResetPasswordInput{
		Email:                email,
		Token:                verify.ResetToken,
		Password:             "brand-new-password",
		PasswordConfirmation: "brand-new-password",
	})
	require.True(t, reset.Success, reset.Message)
	require.True(t, e.store.Logout(ctx).Success)

	old := e.store.Login(ctx, model.LoginInput{Email: email, Password: "initial-password"})
	assert.False(t, old.Success)

	fresh := e.store.Login(ctx, model.LoginInput{Email: email, Password: "brand-new-password"})
	require.True(t, fresh.Success, fresh.Message)
	assert.True(t, fresh.IsVerified)
}

func TestPasswordResetViaEmailLink(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "asha@example.com"
	registerVerified(t, e, email)
	require.True(t, e.store.Logout(ctx).Success)

	forgot := e.store.ForgotPassword(ctx, email)
	require.True(t, forgot.Success, forgot.Message)

	// The user followed the link in the email instead of typing the code.
	reset := e.store.ResetPassword(ctx, model.ResetPasswordInput{
		Email:                email,
		Token:                e.mailer.lastResetToken(t),
		Password:             "brand-new-password",
		PasswordConfirmation: "brand-new-password",
	})
	require.True(t, reset.Success, reset.Message)

	fresh := e.store.Login(ctx, model.LoginInput{Email: email, Password: "brand-new-password"})
	require.True(t, fresh.Success, fresh.Message)
}

func TestResetRejectsBogusToken(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "asha@example.com"
	registerVerified(t, e, email)
	require.True(t, e.store.Logout(ctx).Success)

	require.True(t, e.store.ForgotPassword(ctx, email).Success)

	reset := e.store.ResetPassword(ctx, model.ResetPasswordInput{
		Email:                email,
		Token:                "not-a-real-token",
		Password:             "brand-new-password",
		PasswordConfirmation: "brand-new-password",
	})
	assert.False(t, reset.Success)
	assert.Equal(t, "Invalid or expired reset token", reset.Message)
}

func TestForgotPasswordHidesAccountExistence(t *testing.T) {
	e := startEnv(t)

	res := e.store.ForgotPassword(context.Background(), "nobody@example.com")
	assert.True(t, res.Success)
	assert.Equal(t, "Password reset email sent", res.Message)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	registerVerified(t, e, "asha@example.com")

	token := e.store.Token()
	require.NotEmpty(t, token)
	require.True(t, e.store.Logout(ctx).Success)

	// The old token must be dead server-side, not just forgotten locally.
	req, err := http.NewRequest(http.MethodGet, e.baseURL+"/users/user", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestWrongOTPRejected(t *testing.T) {
	e := startEnv(t)
	ctx := context.Background()
	email := "asha@example.com"

	res := e.store.Register(ctx, registration(email))
	require.True(t, res.Success, res.Message)

	wrong := "000000"
	if e.mailer.lastCode(t) == wrong {
		wrong = "111111"
	}

	verify := e.store.VerifyOTP(ctx, model.VerifyOTPInput{
		Email: email,
		OTP:   wrong,
		Label: model.LabelVerifyEmail,
	})
	assert.False(t, verify.Success)
	assert.Equal(t, "Invalid or expired OTP", verify.Message)
}
