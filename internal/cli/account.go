package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syncup/syncup-go/api"
)

func newAccountCommand(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}
	cmd.AddCommand(newAccountShowCommand(s), newAccountDeleteCommand(s))
	return cmd
}

func newAccountShowCommand(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show account details",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := s.app.RequireSession(ctx); err != nil {
				return err
			}
			details, err := s.app.Client.AccountDetails(ctx)
			if err != nil {
				return errors.New(api.DisplayMessage(err, api.LoadAccountFailedMessage))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:  %s\n", details.Username)
			fmt.Fprintf(out, "Name:      %s %s\n", details.FirstName, details.LastName)
			fmt.Fprintf(out, "Email:     %s\n", details.Email)
			return nil
		},
	}
}

func newAccountDeleteCommand(s *rootState) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete your account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}
			ctx := cmd.Context()
			if _, err := s.app.RequireSession(ctx); err != nil {
				return err
			}
			if err := s.app.Client.DeleteAccount(ctx); err != nil {
				return errors.New(api.DisplayMessage(err, api.DeleteAccountFailedMessage))
			}
			if err := s.app.Session.End(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
