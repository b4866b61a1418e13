package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syncup/syncup-go/api"
)

func newLoginCommand(s *rootState) *cobra.Command {
	var (
		username     string
		passwordFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(passwordFile, s.stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			resp, err := s.app.Client.Login(ctx, api.LoginRequest{Username: username, Password: password})
			if err != nil {
				return errors.New(api.DisplayMessage(err, api.LoginFailedMessage))
			}
			if err := s.app.Session.Begin(ctx, resp.Token); err != nil {
				return err
			}

			decision := s.app.Guard.Check(ctx)
			if !decision.Allowed {
				return fmt.Errorf("backend issued an unusable token (%s)", decision.Reason)
			}
			name := username
			if decision.User != nil {
				name = decision.User.Username
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login successful! Signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newRegisterCommand(s *rootState) *cobra.Command {
	var (
		req          api.RegisterRequest
		passwordFile string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(passwordFile, s.stdin, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			req.Password = password

			if _, err := s.app.Client.Register(cmd.Context(), req); err != nil {
				return errors.New(api.DisplayMessage(err, api.RegistrationFailedMessage))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")

	return cmd
}

func newLogoutCommand(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Session.End(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}
