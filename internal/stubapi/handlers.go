package stubapi

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/advocaid/auth-client/internal/model"
	"github.com/advocaid/auth-client/internal/validate"
	"github.com/advocaid/auth-client/pkg/jwt"
	"github.com/advocaid/auth-client/pkg/password"
	"github.com/advocaid/auth-client/pkg/verification"
)

func (a *App) handleRegister(c *fiber.Ctx) error {
	var input model.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if input.ProfileType == "" {
		input.ProfileType = model.ProfileTypePersonal
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	exists, err := a.users.ExistsByEmail(c.Context(), input.Email)
	if err != nil {
		return serverError(c)
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Email already exists",
		})
	}

	hash, err := password.HashPassword(input.Password)
	if err != nil {
		return serverError(c)
	}

	record := &UserRecord{
		Name:              input.Name,
		Email:             input.Email,
		PasswordHash:      hash,
		ProfileType:       string(input.ProfileType),
		LawFirmName:       input.LawFirmName,
		LicenseNumber:     input.LicenseNumber,
		PracticeAreas:     input.PracticeAreas,
		YearsOfExperience: input.YearsOfExperience,
		BarAssociation:    input.BarAssociation,
	}
	if err := a.users.Create(c.Context(), record); err != nil {
		return serverError(c)
	}

	if err := a.issueOTP(c, input.Email, model.LabelVerifyEmail); err != nil {
		log.Printf("Failed to send verification code: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful, verify your email",
		"data":    fiber.Map{"email": record.Email},
	})
}

func (a *App) handleLogin(c *fiber.Ctx) error {
	var input model.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	user, err := a.users.GetByEmail(c.Context(), input.Email)
	if err != nil {
		return invalidCredentials(c)
	}
	if err := password.CheckPasswordHash(input.Password, user.PasswordHash); err != nil {
		return invalidCredentials(c)
	}

	// An unverified account gets its user record back but never a token;
	// the client is expected to push the user into the OTP flow.
	if user.EmailVerifiedAt == nil {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Login successful",
			"data":    fiber.Map{"user": user.Public()},
		})
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, accessTokenTTL)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data":    fiber.Map{"user": user.Public(), "token": token},
	})
}

func (a *App) handleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals("bearerToken").(string)
	if token != "" {
		if ttl := jwt.GetTokenRemainingTTL(token); ttl > 0 {
			if err := a.cache.Set(c.Context(), blacklistKey(token), "blacklisted", ttl); err != nil {
				log.Printf("Failed to blacklist token: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (a *App) handleCurrentUser(c *fiber.Ctx) error {
	user := a.currentUser(c)
	if user == nil {
		return unauthenticated(c)
	}

	// The current-user endpoint answers outside the data envelope; the
	// client reads the top-level "user" key.
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Public(),
	})
}

func (a *App) handleUpdateUpi(c *fiber.Ctx) error {
	var input model.UpdateUpiInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	user := a.currentUser(c)
	if user == nil {
		return unauthenticated(c)
	}

	if err := a.users.UpdateUpiID(c.Context(), user.ID, input.UpiID); err != nil {
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "UPI ID updated",
	})
}

func (a *App) handleSendOTP(c *fiber.Ctx) error {
	var input model.SendOTPInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	if _, err := a.users.GetByEmail(c.Context(), input.Email); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "No account found for this email",
		})
	}

	if err := a.issueOTP(c, input.Email, input.Label); err != nil {
		log.Printf("Failed to send OTP: %v", err)
		return serverError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to your email",
	})
}

func (a *App) handleVerifyOTP(c *fiber.Ctx) error {
	var input model.VerifyOTPInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	var storedCode string
	if err := a.cache.Get(c.Context(), otpKey(input.Label, input.Email), &storedCode); err != nil {
		return unprocessable(c, "Invalid or expired OTP")
	}
	if storedCode != input.OTP {
		return unprocessable(c, "Invalid or expired OTP")
	}
	_ = a.cache.Delete(c.Context(), otpKey(input.Label, input.Email))

	user, err := a.users.GetByEmail(c.Context(), input.Email)
	if err != nil {
		return unprocessable(c, "Invalid or expired OTP")
	}

	if input.Label == model.LabelVerifyEmail && user.EmailVerifiedAt == nil {
		if err := a.users.MarkEmailVerified(c.Context(), user.ID); err != nil {
			return serverError(c)
		}
		user, err = a.users.GetByID(c.Context(), user.ID)
		if err != nil {
			return serverError(c)
		}
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, accessTokenTTL)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		return serverError(c)
	}

	data := fiber.Map{"user": user.Public(), "token": token}

	// A verified reset code additionally authorizes the password reset
	// itself, so the reply carries a fresh reset credential.
	if input.Label == model.LabelResetPassword {
		resetToken := verification.NewResetToken()
		hash := verification.HashToken(a.cfg.Stub.JWTSecret, resetToken)
		if err := a.cache.Set(c.Context(), resetKey(input.Email), hash, resetTokenTTL); err != nil {
			return serverError(c)
		}
		data["reset_token"] = resetToken
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified",
		"data":    data,
	})
}

func (a *App) handleForgotPassword(c *fiber.Ctx) error {
	var input model.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	// Same answer whether or not the account exists.
	msg := fiber.Map{
		"success": true,
		"message": "Password reset email sent",
	}

	if _, err := a.users.GetByEmail(c.Context(), input.Email); err != nil {
		return c.JSON(msg)
	}

	// The reset email carries both credentials: a six-digit code for the
	// OTP screen and a tokenized link for mail clients.
	resetToken := verification.NewResetToken()
	hash := verification.HashToken(a.cfg.Stub.JWTSecret, resetToken)
	if err := a.cache.Set(c.Context(), resetKey(input.Email), hash, resetTokenTTL); err != nil {
		return serverError(c)
	}

	code := verification.GenerateVerificationCode()
	if err := a.cache.Set(c.Context(), otpKey(model.LabelResetPassword, input.Email), code, otpTTL); err != nil {
		return serverError(c)
	}

	body := fmt.Sprintf(
		"Your password reset code is %s.\n\nOr reset directly: /reset-password?email=%s&token=%s",
		code, input.Email, resetToken,
	)
	if err := a.mailer.SendPlainTextEmail(c.Context(), input.Email, "Reset your password", body); err != nil {
		log.Printf("Failed to send reset email: %v", err)
		return serverError(c)
	}

	return c.JSON(msg)
}

func (a *App) handleResetPassword(c *fiber.Ctx) error {
	var input model.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Malformed request body")
	}
	if err := validate.Struct(input); err != nil {
		return unprocessable(c, err.Error())
	}

	user, err := a.users.GetByEmail(c.Context(), input.Email)
	if err != nil {
		return unprocessable(c, "Invalid reset request")
	}

	if !a.resetCredentialValid(c, input) {
		return unprocessable(c, "Invalid or expired reset token")
	}

	hash, err := password.HashPassword(input.Password)
	if err != nil {
		return serverError(c)
	}
	if err := a.users.UpdatePassword(c.Context(), user.ID, hash); err != nil {
		return serverError(c)
	}

	_ = a.cache.Delete(c.Context(),
		resetKey(input.Email),
		otpKey(model.LabelResetPassword, input.Email),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset",
	})
}

// resetCredentialValid accepts either reset credential: the opaque token
// from the link or OTP verification, or the raw six-digit code itself.
func (a *App) resetCredentialValid(c *fiber.Ctx, input model.ResetPasswordInput) bool {
	var storedHash string
	if err := a.cache.Get(c.Context(), resetKey(input.Email), &storedHash); err == nil {
		if verification.VerifyTokenHash(a.cfg.Stub.JWTSecret, input.Token, storedHash) {
			return true
		}
	}

	var storedCode string
	if err := a.cache.Get(c.Context(), otpKey(model.LabelResetPassword, input.Email), &storedCode); err == nil {
		return storedCode == input.Token
	}
	return false
}

func (a *App) issueOTP(c *fiber.Ctx, email string, label model.OTPLabel) error {
	code := verification.GenerateVerificationCode()
	if err := a.cache.Set(c.Context(), otpKey(label, email), code, otpTTL); err != nil {
		return err
	}

	subject := "Verify your email"
	if label == model.LabelResetPassword {
		subject = "Reset your password"
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)

	return a.mailer.SendPlainTextEmail(c.Context(), email, subject, body)
}

func otpKey(label model.OTPLabel, email string) string {
	return fmt.Sprintf("otp:%s:%s", label, email)
}

func resetKey(email string) string {
	return fmt.Sprintf("reset_token:%s", email)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func unprocessable(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Invalid email or password",
	})
}

func serverError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Something went wrong, please try again",
	})
}
