package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docqmentary/plog/internal/dashboard"
)

func newCollabCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collab",
		Short: "Manage collaborator invitations for a blog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newCollabListCommand(opts))
	cmd.AddCommand(newCollabInviteCommand(opts))
	cmd.AddCommand(newCollabRevokeCommand(opts))
	return cmd
}

func newCollabListCommand(opts *rootOptions) *cobra.Command {
	var blogID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the selected blog's collaborator invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, blogID)
			if err != nil {
				return err
			}
			defer a.Close()

			selected := a.control.Selected()
			if selected == nil {
				return fmt.Errorf("no blog selected; pass --blog")
			}

			collaborators := a.control.Collaborators()
			if len(collaborators) == 0 {
				fmt.Printf("No collaborators invited to %s yet.\n", selected.NaverBlogID)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tSTATUS\tINVITED AT")
			for _, c := range collaborators {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Email, c.Status, c.InvitedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().Int64Var(&blogID, "blog", 0, "Blog ID (defaults to the first blog)")
	return cmd
}

func newCollabInviteCommand(opts *rootOptions) *cobra.Command {
	var blogID int64

	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a teammate to the selected blog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, blogID)
			if err != nil {
				return err
			}
			defer a.Close()

			a.control.SetInviteForm(dashboard.InviteForm{Email: args[0]})
			if err := a.control.Invite(ctx); err != nil {
				return err
			}
			fmt.Println(a.control.SuccessMessage())
			return nil
		},
	}

	cmd.Flags().Int64Var(&blogID, "blog", 0, "Blog ID (defaults to the first blog)")
	return cmd
}

func newCollabRevokeCommand(opts *rootOptions) *cobra.Command {
	var blogID int64

	cmd := &cobra.Command{
		Use:   "revoke <collaborator-id>",
		Short: "Revoke a collaborator invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collaboratorID, err := parseInt64(args[0])
			if err != nil {
				return fmt.Errorf("invalid collaborator ID %q", args[0])
			}

			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, blogID)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.control.Revoke(ctx, collaboratorID); err != nil {
				return err
			}
			fmt.Println(a.control.SuccessMessage())
			return nil
		},
	}

	cmd.Flags().Int64Var(&blogID, "blog", 0, "Blog ID (defaults to the first blog)")
	return cmd
}
