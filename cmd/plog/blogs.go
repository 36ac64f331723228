package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docqmentary/plog/internal/dashboard"
	"github.com/docqmentary/plog/internal/models"
)

func newBlogsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "Manage claimed blogs and their verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBlogsListCommand(opts))
	cmd.AddCommand(newBlogsRegisterCommand(opts))
	cmd.AddCommand(newBlogsVerifyCommand(opts))
	cmd.AddCommand(newBlogsDisownCommand(opts))
	return cmd
}

// openDashboard wires the app, checks the session, and loads the blog list
// (selecting blogID when non-zero).
func openDashboard(ctx context.Context, opts *rootOptions, blogID int64) (*app, error) {
	a, err := newApp(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := a.requireSession(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.control.Refresh(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if blogID != 0 {
		if err := a.control.Select(ctx, blogID); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func newBlogsListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List claimed blogs with their verification status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, 0)
			if err != nil {
				return err
			}
			defer a.Close()

			printBlogs(a.control.Blogs(), a.control.Selected())
			return nil
		},
	}
}

func newBlogsRegisterCommand(opts *rootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "register <naver-blog-id>",
		Short: "Claim ownership of an external blog and generate its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, 0)
			if err != nil {
				return err
			}
			defer a.Close()

			a.control.SetRegisterForm(dashboard.RegisterForm{NaverBlogID: args[0], Title: title})
			if err := a.control.Register(ctx); err != nil {
				return err
			}

			blog := a.control.Selected()
			fmt.Println(a.control.SuccessMessage())
			fmt.Printf("  title token: %s\n  body token:  %s\n", blog.TitleToken, blog.BodyToken)
			fmt.Println("Publish a post containing both tokens, then run \"plog blogs verify\".")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Optional display title")
	return cmd
}

func newBlogsVerifyCommand(opts *rootOptions) *cobra.Command {
	var (
		blogID  int64
		postURL string
		title   string
		body    string
		auto    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the verification post and refresh blog status",
		Long: `Check the verification post and refresh blog status.

With --auto the post content is fetched locally and sent as hints; when no
--post-url is given, the blog's RSS feed is scanned for the post carrying
the verification tokens.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			a, err := openDashboard(ctx, opts, blogID)
			if err != nil {
				return err
			}
			defer a.Close()

			selected := a.control.Selected()
			if selected == nil {
				return fmt.Errorf("no blog selected; register one or pass --blog")
			}

			if auto {
				postURL, title, body, err = gatherHints(ctx, a, selected, postURL)
				if err != nil {
					return err
				}
			}

			a.control.SetVerifyForm(dashboard.VerifyForm{PostURL: postURL, Title: title, Body: body})
			if err := a.control.Verify(ctx); err != nil {
				return err
			}

			fmt.Println(a.control.SuccessMessage())
			if refreshed := a.control.Selected(); refreshed != nil {
				fmt.Printf("Blog %s status: %s\n", refreshed.NaverBlogID, refreshed.Status)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&blogID, "blog", 0, "Blog ID (defaults to the first blog)")
	cmd.Flags().StringVar(&postURL, "post-url", "", "URL of the published verification post")
	cmd.Flags().StringVar(&title, "title", "", "Pre-fetched post title hint")
	cmd.Flags().StringVar(&body, "body", "", "Pre-fetched post body hint")
	cmd.Flags().BoolVar(&auto, "auto", false, "Fetch the post content locally before verifying")
	return cmd
}

// gatherHints fetches the verification post's content. Without a URL it
// scans the blog's RSS feed for the post carrying the tokens.
func gatherHints(ctx context.Context, a *app, blog *models.Blog, postURL string) (url, title, body string, err error) {
	if postURL == "" {
		url, hints, err := a.fetcher.FindVerificationPost(ctx, blog.NaverBlogID, blog.TitleToken, blog.BodyToken)
		if err != nil {
			return "", "", "", err
		}
		fmt.Printf("Found verification post: %s\n", url)
		return url, hints.Title, hints.Body, nil
	}

	hints, err := a.fetcher.ExtractHints(ctx, postURL)
	if err != nil {
		return "", "", "", err
	}
	return postURL, hints.Title, hints.Body, nil
}

func newBlogsDisownCommand(opts *rootOptions) *cobra.Command {
	var (
		blogID int64
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "disown",
		Short: "Release a blog permanently (cannot be undone)",
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
			if !yes {
				return fmt.Errorf("disowning %s is irreversible; re-run with --yes to confirm", selected.NaverBlogID)
			}

			if err := a.control.Disown(ctx); err != nil {
				return err
			}
			fmt.Println(a.control.SuccessMessage())
			return nil
		},
	}

	cmd.Flags().Int64Var(&blogID, "blog", 0, "Blog ID (defaults to the first blog)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the irreversible disown")
	return cmd
}

func printBlogs(blogs []models.Blog, selected *models.Blog) {
	if len(blogs) == 0 {
		fmt.Println("No blogs yet. Run \"plog blogs register\" to claim one.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tBLOG\tTITLE\tSTATUS\tVERIFIED AT")
	for _, b := range blogs {
		marker := " "
		if selected != nil && b.ID == selected.ID {
			marker = "*"
		}
		verifiedAt := ""
		if b.VerifiedAt != nil {
			verifiedAt = b.VerifiedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s %d\t%s\t%s\t%s\t%s\n", marker, b.ID, b.NaverBlogID, b.Title, b.Status, verifiedAt)
	}
	w.Flush()
}
