package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syncup/syncup-go/api"
	"github.com/syncup/syncup-go/internal/dashboard"
)

func newListsCommand(s *rootState) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show the dashboard: your task lists and totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			decision, err := s.app.RequireSession(ctx)
			if err != nil {
				return err
			}

			mode, err := resolveViewMode(cmd, s, view)
			if err != nil {
				return err
			}

			lists, err := s.app.Client.AllLists(ctx)
			if err != nil {
				if api.StatusOf(err) == http.StatusUnauthorized {
					return fmt.Errorf("%w (rejected by server)", ErrNotSignedIn)
				}
				return errors.New(api.DisplayMessage(err, api.LoadListsFailedMessage))
			}

			username := ""
			if decision.User != nil {
				username = decision.User.Username
			} else if cached, ok, _ := s.app.Session.CachedUser(ctx); ok {
				username = cached.Username
			}

			renderSummary(cmd.OutOrStdout(), dashboard.Summarize(username, lists), mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "layout: grid or list (remembered for next time)")
	return cmd
}

func resolveViewMode(cmd *cobra.Command, s *rootState, flag string) (dashboard.ViewMode, error) {
	ctx := cmd.Context()
	if flag == "" {
		mode, err := dashboard.LoadViewMode(ctx, s.app.Store)
		if err != nil {
			s.app.Logger.Warn("view preference unavailable", "error", err)
		}
		return mode, nil
	}
	mode, err := dashboard.ParseViewMode(flag)
	if err != nil {
		return "", err
	}
	if err := dashboard.SaveViewMode(ctx, s.app.Store, mode); err != nil {
		s.app.Logger.Warn("view preference not saved", "error", err)
	}
	return mode, nil
}

func renderSummary(w io.Writer, sum dashboard.Summary, mode dashboard.ViewMode) {
	if sum.DisplayName != "" {
		fmt.Fprintf(w, "Welcome back, %s!\n", sum.DisplayName)
	}
	fmt.Fprintf(w, "Lists: %d  Pending: %d  Completed: %d  Collaborations: %d\n",
		len(sum.Lists), sum.TotalPending, sum.TotalCompleted, sum.Collaborations)

	if len(sum.Lists) == 0 {
		fmt.Fprintln(w, "No task lists yet.")
		return
	}
	fmt.Fprintln(w)

	if mode == dashboard.ViewList {
		for _, l := range sum.Lists {
			fmt.Fprintf(w, "- %s (#%d) %s: %d pending, %d completed\n",
				l.Title, l.ID, ownerLabel(l), l.Pending, l.Completed)
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tOWNER\tPENDING\tDONE\tSHARED")
	for _, l := range sum.Lists {
		owner := l.Owner
		if l.Owned {
			owner = "you"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n", l.ID, l.Title, owner, l.Pending, l.Completed, l.Shared)
	}
	_ = tw.Flush()
}

func ownerLabel(l dashboard.ListSummary) string {
	if l.Owned {
		return "owned by you"
	}
	return "shared by " + l.Owner
}
