package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docqmentary/plog/internal/api"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var (
		devUser string
		idToken string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange a credential for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (devUser == "") == (idToken == "") {
				return fmt.Errorf("exactly one of --dev-user or --id-token is required")
			}

			ctx := commandContext(cmd.Context())
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.gateway.Login(ctx, api.LoginRequest{DevUser: devUser, IDToken: idToken})
			if err != nil {
				return err
			}
			if err := a.sessions.Set(ctx, sess); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s (user %d)\n", sess.Email, sess.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&devUser, "dev-user", "", "Sign in as this email without Google (development only)")
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google OAuth ID token")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.sessions.Current()
			if sess == nil {
				fmt.Println("Not signed in")
				return nil
			}
			name := sess.DisplayName
			if name == "" {
				name = sess.Email
			}
			fmt.Printf("%s <%s> (user %d)\n", name, sess.Email, sess.UserID)
			return nil
		},
	}
}
