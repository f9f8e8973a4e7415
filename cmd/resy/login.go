package main

import (
	"context"
	"errors"
	"strings"

	"github.com/brizzai/resy-client/internal/apperror"
	"github.com/brizzai/resy-client/internal/auth"
	"github.com/brizzai/resy-client/internal/models"
	"github.com/brizzai/resy-client/internal/phone"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginPhone string
	loginCode  string
	loginEmail string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your phone number",
	Long: `Sends a verification code to your phone and exchanges it for a session.
Values not given as flags are prompted for.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "Phone number, e.g. 555-123-4567")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Verification code received by SMS")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address, used when Resy asks for extra verification")
}

func runLogin(cmd *cobra.Command, args []string) error {
	flow, _, err := clientComponents(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	pterm.Println(titleStyle.Render("Resy login"))

	number, err := promptIfEmpty(loginPhone, "Phone number")
	if err != nil {
		return err
	}
	if !phone.IsValid(phone.Format(number)) {
		return apperror.New(apperror.KindInvalidPhoneNumber)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Sending verification code to " + phone.Format(number))
	if err := flow.SendVerificationCode(ctx, number); err != nil {
		spinner.Fail(err.Error())
		return errSilent
	}
	spinner.Success("Verification code sent")

	code, err := promptIfEmpty(loginCode, "Verification code")
	if err != nil {
		return err
	}

	s, err := flow.VerifyCode(ctx, code)
	if challenge, ok := apperror.AsChallenge(err); ok {
		s, err = completeChallenge(ctx, flow, challenge)
	}
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Signed in as user %d", s.UserID)
	if !s.ExpiresAt.IsZero() {
		pterm.Println(mutedStyle.Render("Session valid until " + s.ExpiresAt.Local().Format("Jan 2, 2006 15:04")))
	}
	return nil
}

func completeChallenge(ctx context.Context, flow *auth.Flow, challenge *models.ChallengeResponse) (*models.Session, error) {
	message := challenge.Challenge.Message
	if message == "" {
		message = apperror.KindChallengeRequired.Message()
	}
	if challenge.Challenge.FirstName != "" {
		pterm.Info.Printfln("Hi %s. %s", challenge.Challenge.FirstName, message)
	} else {
		pterm.Info.Println(message)
	}

	email, err := promptIfEmpty(loginEmail, "Email address")
	if err != nil {
		return nil, err
	}
	return flow.CompleteChallenge(ctx, email)
}

func promptIfEmpty(value, label string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	answer, err := pterm.DefaultInteractiveTextInput.Show(label)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", errors.New(strings.ToLower(label) + " is required")
	}
	return answer, nil
}
