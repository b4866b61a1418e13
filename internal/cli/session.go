package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/syncup/syncup-go/syncauth"
)

func newWhoAmICommand(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			decision, err := s.app.RequireSession(ctx)
			if err != nil {
				return err
			}

			user := decision.User
			if user == nil {
				// presence-only guard: decode for display, never for access
				token, _, err := s.app.Session.Token(ctx)
				if err != nil {
					return err
				}
				user, err = s.app.Auth.Codec().SessionUser(token)
				if err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Signed in (token details unavailable)")
					return nil
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:  %s\n", user.Username)
			if !user.IssuedAt.IsZero() && user.IssuedAt.Unix() != 0 {
				fmt.Fprintf(out, "Issued:    %s\n", user.IssuedAt.Format(time.RFC3339))
			}
			fmt.Fprintf(out, "Expires:   %s\n", user.ExpiresAt.Format(time.RFC3339))
			if user.IsExpired {
				fmt.Fprintln(out, "Status:    expired")
			}
			return nil
		},
	}
}

func newTokenCommand(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect session tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "decode [token]",
		Short: "Print the claims of a token (the stored one by default) without verifying it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			} else {
				stored, ok, err := s.app.Session.Token(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: no stored token", ErrNotSignedIn)
				}
				token = stored
			}

			codec := s.app.Auth.Codec()
			claims, err := codec.Decode(token)
			if err != nil {
				return fmt.Errorf("decode failed (%s)", syncauth.CodeOf(err))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Subject   string `json:"sub"`
				IssuedAt  int64  `json:"iat"`
				ExpiresAt int64  `json:"exp"`
				Expired   bool   `json:"expired"`
			}{claims.Subject, claims.IssuedAt, claims.ExpiresAt, codec.IsExpired(claims.ExpiresAt)})
		},
	})

	return cmd
}
