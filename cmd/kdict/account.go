package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goodtune/kdict/internal/auth"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage your kdict account",
	Long:  `Create an account or check its credentials. Both use the global --email and --password flags.`,
}

var accountSignUpCmd = &cobra.Command{
	Use:     "signup",
	Short:   "Create an account",
	Example: `  kdict --email me@example.com --password secret123 account signup`,
	Args:    cobra.NoArgs,
	RunE:    runAccountSignUp,
}

var accountSignInCmd = &cobra.Command{
	Use:     "signin",
	Short:   "Check credentials and print an API token",
	Example: `  kdict --email me@example.com --password secret123 account signin`,
	Args:    cobra.NoArgs,
	RunE:    runAccountSignIn,
}

func init() {
	accountCmd.AddCommand(accountSignUpCmd)
	accountCmd.AddCommand(accountSignInCmd)
	rootCmd.AddCommand(accountCmd)
}

func runAccountSignUp(cmd *cobra.Command, args []string) error {
	store, err := openRemote(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	account, _, err := newAuthService(store).SignUp(cmd.Context(), auth.Credentials{Email: email, Password: password})
	if err != nil {
		return reportAuthError(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (%s)\n", account.Email, account.ID)
	return nil
}

func runAccountSignIn(cmd *cobra.Command, args []string) error {
	store, err := openRemote(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	account, token, err := newAuthService(store).SignIn(cmd.Context(), auth.Credentials{Email: email, Password: password})
	if err != nil {
		return reportAuthError(cmd.ErrOrStderr(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", account.Email)
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

// reportAuthError prints field errors inline under their field name
func reportAuthError(w io.Writer, err error) error {
	var verr *auth.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	for _, fe := range verr.Errors {
		_, _ = errColor.Fprintf(w, "  %s %s\n", fe.Field, fe.Message)
	}
	return errors.New("please correct the fields above")
}
