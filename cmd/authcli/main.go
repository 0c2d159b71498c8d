// Command authcli is a terminal walk of the product's auth screens:
// sign-in, registration, OTP verification, forgot/reset password and a
// minimal dashboard that edits the payment identifier. It drives the
// session store exactly the way the web screens do and routes on the same
// paths.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/advocaid/auth-client/internal/configs"
	"github.com/advocaid/auth-client/internal/credentials"
	"github.com/advocaid/auth-client/internal/model"
	"github.com/advocaid/auth-client/internal/session"
	"github.com/advocaid/auth-client/internal/transport"
)

type cli struct {
	store *session.Store
	in    *bufio.Scanner
	done  bool
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	cfg, err := configs.Load(env)
	if err != nil {
		cfg = configs.Default(env)
	}

	creds := credentials.NewStore(cfg.API.CredentialsFile)
	api, err := transport.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, creds)
	if err != nil {
		log.Fatalf("Failed to build API client: %v", err)
	}

	store := session.NewStore(api, creds)
	store.OnForcedSignOut(func() {
		fmt.Println("\nYour session has expired. Please sign in again.")
	})

	ctx := context.Background()
	if res := store.Init(ctx); res.Message != "" {
		fmt.Println(res.Message)
	}

	ui := &cli{store: store, in: bufio.NewScanner(os.Stdin)}
	ui.run(ctx)
}

func (c *cli) run(ctx context.Context) {
	for !c.done {
		switch c.store.Route() {
		case session.RouteDashboard:
			c.dashboardScreen(ctx)
		case session.RouteVerifyOTP:
			c.verifyOTPScreen(ctx)
		default:
			c.entryScreen(ctx)
		}
	}
}

func (c *cli) entryScreen(ctx context.Context) {
	fmt.Println("\n-- Sign in --")
	switch c.prompt("[l]ogin, [r]egister, [f]orgot password, [q]uit: ") {
	case "l":
		c.loginScreen(ctx)
	case "r":
		c.registerScreen(ctx)
	case "f":
		c.forgotPasswordScreen(ctx)
	case "q":
		c.done = true
	}
}

func (c *cli) loginScreen(ctx context.Context) {
	input := model.LoginInput{
		Email:    c.prompt("Email: "),
		Password: c.prompt("Password: "),
	}

	res := c.store.Login(ctx, input)
	c.toast(res.Result)
	if res.Success && !res.IsVerified {
		fmt.Println("Your email is not verified yet; we sent you a code.")
	}
}

func (c *cli) registerScreen(ctx context.Context) {
	input := model.RegisterInput{
		Name:                 c.prompt("Full name: "),
		Email:                c.prompt("Email: "),
		Password:             c.prompt("Password: "),
		PasswordConfirmation: c.prompt("Confirm password: "),
	}

	if c.prompt("Professional (law firm) account? [y/N]: ") == "y" {
		input.ProfileType = model.ProfileTypeBusiness
		input.LawFirmName = c.prompt("Law firm name: ")
		input.LicenseNumber = c.prompt("License number: ")
		input.PracticeAreas = c.prompt("Practice areas: ")
		input.YearsOfExperience, _ = strconv.Atoi(c.prompt("Years of experience: "))
		input.BarAssociation = c.prompt("Bar association (optional): ")
	}

	c.toast(c.store.Register(ctx, input))
}

func (c *cli) verifyOTPScreen(ctx context.Context) {
	email := c.store.VerifyEmail()
	label := c.store.Flow().Label()
	fmt.Printf("\n-- Verify OTP (%s) --\n", label)
	fmt.Printf("A 6-digit code was sent to %s\n", email)

	code := c.prompt("Code ([r] to resend, [b] to go back): ")
	switch code {
	case "r":
		c.toast(c.store.SendOTP(ctx, model.SendOTPInput{Email: email, Label: label}))
		return
	case "b":
		c.toast(c.store.Logout(ctx))
		return
	}

	res := c.store.VerifyOTP(ctx, model.VerifyOTPInput{Email: email, OTP: code, Label: label})
	c.toast(res.Result)
	if res.Success && label == model.LabelResetPassword {
		c.resetPasswordScreen(ctx, email, res.ResetToken)
	}
}

func (c *cli) forgotPasswordScreen(ctx context.Context) {
	email := c.prompt("Account email: ")
	c.toast(c.store.ForgotPassword(ctx, email))
}

func (c *cli) resetPasswordScreen(ctx context.Context, email, token string) {
	fmt.Println("\n-- Reset password --")
	if token == "" {
		// Link flow: the credential came from the reset URL's query string.
		token = c.prompt("Reset token: ")
	}

	input := model.ResetPasswordInput{
		Email:                email,
		Token:                token,
		Password:             c.prompt("New password: "),
		PasswordConfirmation: c.prompt("Confirm new password: "),
	}

	res := c.store.ResetPassword(ctx, input)
	c.toast(res)
	if res.Success {
		c.toast(c.store.Logout(ctx))
		fmt.Println("Please sign in with your new password.")
	}
}

func (c *cli) dashboardScreen(ctx context.Context) {
	user := c.store.User()
	fmt.Printf("\n-- Dashboard --\nSigned in as %s <%s> (%s)\n", user.Name, user.Email, user.ProfileType)
	if user.UpiID != nil {
		fmt.Printf("Payment UPI ID: %s\n", *user.UpiID)
	} else {
		fmt.Println("Payment UPI ID: not set")
	}

	switch c.prompt("[u]pdate UPI ID, [r]efresh, [o] sign out, [q]uit: ") {
	case "u":
		c.toast(c.store.UpdateUpiID(ctx, c.prompt("New UPI ID: ")))
	case "r":
		if _, err := c.store.FetchUser(ctx); err != nil {
			fmt.Println("Could not refresh profile.")
		}
	case "o":
		c.toast(c.store.Logout(ctx))
	case "q":
		c.done = true
	}
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		c.done = true
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

// toast mirrors the web app's transient notification for every action
// outcome, success or failure.
func (c *cli) toast(res session.Result) {
	if res.Message == "" {
		return
	}
	if res.Success {
		fmt.Printf("✔ %s\n", res.Message)
	} else {
		fmt.Printf("✘ %s\n", res.Message)
	}
}
