// Package session holds the authoritative client-side auth state and every
// session-mutating action: login, registration, OTP verification, password
// reset, logout and the profile payment-identifier update. All business
// logic lives behind the HTTP API; this store collects input, calls the
// API, and routes state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/advocaid/auth-client/internal/credentials"
	"github.com/advocaid/auth-client/internal/model"
	"github.com/advocaid/auth-client/internal/transport"
	"github.com/advocaid/auth-client/internal/validate"
)

// authPayload is the data envelope returned by login and OTP verification.
type authPayload struct {
	User       *model.User `json:"user"`
	Token      string      `json:"token"`
	ResetToken string      `json:"reset_token"`
}

// Store is the per-process session: at most one exists per running client.
// The mutex guards the state fields only; it is never held across a
// network call, so the 401 hook can clear the session mid-request.
type Store struct {
	api   *transport.Client
	creds *credentials.Store

	mu          sync.Mutex
	user        *model.User
	token       string
	loading     bool
	lastError   string
	verifyEmail string
	flow        VerificationFlow
	profileType model.ProfileType

	onForcedSignOut func()
	fetchGroup      singleflight.Group
}

func NewStore(api *transport.Client, creds *credentials.Store) *Store {
	s := &Store{
		api:         api,
		creds:       creds,
		profileType: model.ProfileTypePersonal,
	}
	api.SetUnauthorizedHandler(s.forceSignOut)
	return s
}

// OnForcedSignOut registers the navigation hook run when a 401 tears the
// session down. The view layer points it at the sign-in screen.
func (s *Store) OnForcedSignOut(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onForcedSignOut = fn
}

// Init restores a persisted session: read the stored token, and if one is
// present validate it with a single FetchUser call. Any failure clears the
// session back to signed-out defaults.
func (s *Store) Init(ctx context.Context) Result {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.creds.Load(); err != nil {
		log.Printf("Error reading stored credentials: %v", err)
		return Result{Success: true}
	}

	token := s.creds.Token()
	if token == "" {
		return Result{Success: true}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if _, err := s.FetchUser(ctx); err != nil {
		s.clearSession()
		return Result{Success: true}
	}

	return Result{Success: true, Message: "Session restored"}
}

// Register posts a new account. It never signs the user in; on success the
// store moves into the verify-email flow and the caller routes to the OTP
// screen.
func (s *Store) Register(ctx context.Context, input model.RegisterInput) Result {
	if input.ProfileType == "" {
		input.ProfileType = model.ProfileTypePersonal
	}
	if err := validate.Struct(input); err != nil {
		return failure(err.Error())
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/create", input)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		return failure(transport.UserMessage(err, ""))
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil || payload.Email == "" {
		payload.Email = input.Email
	}

	s.mu.Lock()
	s.verifyEmail = payload.Email
	s.flow = FlowVerifyEmail
	s.profileType = input.ProfileType
	s.mu.Unlock()

	return Result{Success: resp.Success, Message: resp.Message}
}

// Login authenticates against the API. Verification status gates whether a
// usable session is created at all: an unverified account gets an OTP sent
// and no token, so the caller routes to the OTP screen instead of the
// dashboard.
func (s *Store) Login(ctx context.Context, input model.LoginInput) LoginResult {
	if err := validate.Struct(input); err != nil {
		return LoginResult{Result: failure(err.Error())}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.PrimeCSRF(ctx); err != nil {
		log.Printf("Error logging in user: %v", err)
		return LoginResult{Result: failure(transport.UserMessage(err, ""))}
	}

	resp, err := s.api.Post(ctx, "/users/login", input)
	if err != nil {
		log.Printf("Error logging in user: %v", err)
		return LoginResult{Result: failure(transport.UserMessage(err, ""))}
	}

	var payload authPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil || payload.User == nil {
		return LoginResult{Result: failure(transport.FallbackMessage)}
	}

	if !payload.User.IsEmailVerified() {
		s.mu.Lock()
		s.flow = FlowVerifyEmail
		s.mu.Unlock()

		sent := s.SendOTP(ctx, model.SendOTPInput{
			Email: payload.User.Email,
			Label: model.LabelVerifyEmail,
		})
		if !sent.Success {
			return LoginResult{Result: sent}
		}

		return LoginResult{
			Result:     Result{Success: resp.Success, Message: resp.Message},
			IsVerified: false,
		}
	}

	s.setAuthenticated(payload.User, payload.Token)

	return LoginResult{
		Result:     Result{Success: resp.Success, Message: resp.Message},
		IsVerified: true,
	}
}

// Logout is best-effort on the wire and unconditional locally: the server
// call may fail, the client session still ends.
func (s *Store) Logout(ctx context.Context) Result {
	s.setLoading(true)
	defer func() {
		s.setLoading(false)
		s.clearSession()
	}()

	s.mu.Lock()
	hasToken := s.token != ""
	s.mu.Unlock()

	if hasToken {
		if _, err := s.api.Post(ctx, "/users/logout", nil); err != nil {
			log.Printf("Logout error: %v", err)
			s.setError(transport.UserMessage(err, "Logout failed"))
		}
	}

	return Result{Success: true, Message: "Logged out successfully"}
}

// FetchUser replaces the user snapshot with the server's canonical record.
// Concurrent callers share one request; the call is idempotent so every
// waiter can safely receive the same result.
func (s *Store) FetchUser(ctx context.Context) (*model.User, error) {
	v, err, _ := s.fetchGroup.Do("fetch_user", func() (any, error) {
		s.setLoading(true)
		defer s.setLoading(false)

		resp, err := s.api.Get(ctx, "/users/user")
		if err != nil {
			s.mu.Lock()
			s.user = nil
			s.lastError = "User not authenticated"
			s.mu.Unlock()
			return nil, err
		}

		var payload struct {
			User *model.User `json:"user"`
		}
		if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.User == nil {
			s.mu.Lock()
			s.user = nil
			s.lastError = "User not authenticated"
			s.mu.Unlock()
			if err == nil {
				err = errors.New("malformed user response")
			}
			return nil, err
		}

		s.mu.Lock()
		s.user = payload.User
		token := s.token
		s.mu.Unlock()

		if token != "" {
			if err := s.creds.Save(token, payload.User); err != nil {
				log.Printf("Error persisting session: %v", err)
			}
		}

		return payload.User, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.User), nil
}

// UpdateUpiID posts the new payment identifier and then re-fetches the
// whole user record rather than patching the field locally, so the visible
// state always matches the server's canonical row.
func (s *Store) UpdateUpiID(ctx context.Context, upiID string) Result {
	if err := validate.Struct(model.UpdateUpiInput{UpiID: upiID}); err != nil {
		return failure(err.Error())
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/update/upi", model.UpdateUpiInput{UpiID: upiID})
	if err != nil {
		log.Printf("Error updating UPI: %v", err)
		return failure(transport.UserMessage(err, ""))
	}

	if _, err := s.FetchUser(ctx); err != nil {
		log.Printf("Error updating UPI: %v", err)
		return failure(transport.UserMessage(err, ""))
	}

	return Result{Success: resp.Success, Message: resp.Message}
}

// SendOTP requests a one-time code for the given email and purpose and
// records the email so the verify call can be correlated to it.
func (s *Store) SendOTP(ctx context.Context, input model.SendOTPInput) Result {
	if err := validate.Struct(input); err != nil {
		return failure(err.Error())
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/otp/send", input)
	if err != nil {
		log.Printf("Error sending OTP: %v", err)
		return failure(transport.UserMessage(err, "Error sending OTP"))
	}

	s.mu.Lock()
	s.verifyEmail = input.Email
	s.mu.Unlock()

	return Result{Success: resp.Success, Message: resp.Message}
}

// VerifyOTP submits the code. Success establishes a full session (user and
// token both set); for a reset_password code the result also carries the
// reset token the password form needs, and the pending flow closes.
func (s *Store) VerifyOTP(ctx context.Context, input model.VerifyOTPInput) VerifyOTPResult {
	if err := validate.Struct(input); err != nil {
		return VerifyOTPResult{Result: failure(err.Error())}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/otp/verify", input)
	if err != nil {
		log.Printf("Error verifying OTP: %v", err)
		return VerifyOTPResult{Result: failure(transport.UserMessage(err, "Error verifying OTP"))}
	}

	result := VerifyOTPResult{Result: Result{Success: resp.Success, Message: resp.Message}}

	if resp.Success {
		var payload authPayload
		if err := json.Unmarshal(resp.Data, &payload); err == nil && payload.User != nil {
			s.setAuthenticated(payload.User, payload.Token)
		}
		result.ResetToken = payload.ResetToken

		s.mu.Lock()
		s.flow = FlowNone
		s.mu.Unlock()
	}

	return result
}

// ForgotPassword requests a reset code and opens the reset-password flow.
func (s *Store) ForgotPassword(ctx context.Context, email string) Result {
	if err := validate.Struct(model.ForgotPasswordInput{Email: email}); err != nil {
		return failure(err.Error())
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/password/forgot", model.ForgotPasswordInput{Email: email})
	if err != nil {
		log.Printf("Error sending reset email: %v", err)
		return failure(transport.UserMessage(err, "Error sending reset email"))
	}

	s.mu.Lock()
	s.verifyEmail = email
	s.flow = FlowResetPassword
	s.mu.Unlock()

	return Result{Success: resp.Success, Message: resp.Message}
}

// ResetPassword submits a new password with whichever reset credential the
// caller holds. It does not authenticate; the caller routes to sign-in.
func (s *Store) ResetPassword(ctx context.Context, input model.ResetPasswordInput) Result {
	if err := validate.Struct(input); err != nil {
		return failure(err.Error())
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.api.Post(ctx, "/users/password/reset", input)
	if err != nil {
		log.Printf("Error resetting password: %v", err)
		return failure(transport.UserMessage(err, "Error resetting password"))
	}

	return Result{Success: resp.Success, Message: resp.Message}
}

// State accessors. Each returns a copy under the lock; User returns the
// shared snapshot pointer, which callers treat as read-only.

func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Store) VerifyEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyEmail
}

func (s *Store) Flow() VerificationFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow
}

func (s *Store) ProfileType() model.ProfileType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileType
}

// setAuthenticated installs a verified user and token pair and persists
// them. A token is never set without its user.
func (s *Store) setAuthenticated(user *model.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.lastError = ""
	s.mu.Unlock()

	if err := s.creds.Save(token, user); err != nil {
		log.Printf("Error persisting session: %v", err)
	}
}

// clearSession resets everything back to signed-out defaults, including
// the persisted pair.
func (s *Store) clearSession() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.lastError = ""
	s.verifyEmail = ""
	s.flow = FlowNone
	s.profileType = model.ProfileTypePersonal
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		log.Printf("Error clearing stored credentials: %v", err)
	}
}

// forceSignOut is the 401 hook: authentication expiry tears the session
// down and sends the view layer back to sign-in, distinct from an ordinary
// failed result.
func (s *Store) forceSignOut() {
	s.clearSession()

	s.mu.Lock()
	fn := s.onForcedSignOut
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Store) setError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.mu.Unlock()
}
