// Package cli implements the syncup command line client.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/syncup/syncup-go/internal/config"
	"github.com/syncup/syncup-go/syncauth"
)

// Option customizes the root command, mostly for tests
type Option func(*rootState)

// WithStore replaces the configured session store
func WithStore(store syncauth.Store) Option {
	return func(s *rootState) { s.store = store }
}

// WithStdin sets where prompts read from
func WithStdin(r io.Reader) Option {
	return func(s *rootState) { s.stdin = r }
}

type rootState struct {
	cfgFile string
	store   syncauth.Store
	stdin   io.Reader
	app     *App
}

// NewRootCommand builds the syncup command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	state := &rootState{stdin: os.Stdin}
	for _, opt := range opts {
		opt(state)
	}

	cmd := &cobra.Command{
		Use:           "syncup",
		Short:         "SyncUp command line client",
		Long:          "Sign in to SyncUp, inspect the stored session, and browse your task lists.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.cfgFile)
			if err != nil {
				return err
			}
			app, err := NewApp(cmd.Context(), cfg, state.store, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			state.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if state.app == nil {
				return nil
			}
			return state.app.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&state.cfgFile, "config", "", "config file path (default: ./syncup.yaml or the user config dir)")

	cmd.AddCommand(
		newLoginCommand(state),
		newRegisterCommand(state),
		newLogoutCommand(state),
		newWhoAmICommand(state),
		newListsCommand(state),
		newAccountCommand(state),
		newTokenCommand(state),
	)

	return cmd
}
