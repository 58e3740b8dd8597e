// learnfast is a command-line front end for the registration API. It runs
// the same validation as the server before submitting, and remembers the
// firstname and email of the last full registration so the next
// "register" can be prefilled.
//
//	learnfast quick --email a@b.com --password longenough
//	learnfast register --firstname Ada --lastname Lovelace \
//	    --email ada@example.com --password analytical --terms
//	learnfast prefill
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/learnfast-registration/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// errReported is returned once the failure has already been printed.
var errReported = errors.New("reported")

type options struct {
	apiURL        string
	statePath     string
	redirectDelay time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "learnfast",
		Short:         "Register for LearnFast courses from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "http://localhost:3000", "Registration API base URL")
	root.PersistentFlags().StringVar(&opts.statePath, "state", defaultStatePath(), "File holding cached form input")
	root.PersistentFlags().DurationVar(&opts.redirectDelay, "redirect-delay", client.DefaultRedirectDelay, "Delay before following a redirect")

	root.AddCommand(newQuickCmd(opts), newRegisterCmd(opts), newPrefillCmd(opts))
	return root
}

func newQuickCmd(opts *options) *cobra.Command {
	var email, pw string

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Quick registration with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := client.NewForm(client.Quick)
			form.Set(client.FieldEmail, email)
			form.Set(client.FieldPassword, pw)
			return submit(cmd, opts, form)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&pw, "password", "", "Password (8+ characters)")
	return cmd
}

func newRegisterCmd(opts *options) *cobra.Command {
	var (
		firstname, lastname, email, pw, course string
		terms                                  bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Full student registration",
		Long: "Full student registration. --firstname and --email default to the\n" +
			"values of the last successful registration.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := newSubmitter(cmd, opts)
			if err != nil {
				return err
			}
			defer sub.Close()

			form := client.NewForm(client.Full)
			if _, err := sub.Prefill(form); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "ignoring cached input: %v\n", err)
			}
			if cmd.Flags().Changed("firstname") {
				form.Set(client.FieldFirstname, firstname)
			}
			if cmd.Flags().Changed("email") {
				form.Set(client.FieldEmail, email)
			}
			form.Set(client.FieldLastname, lastname)
			form.Set(client.FieldPassword, pw)
			form.Set(client.FieldCourse, course)
			form.SetTerms(terms)

			return run(cmd, sub, form)
		},
	}
	cmd.Flags().StringVar(&firstname, "firstname", "", "First name")
	cmd.Flags().StringVar(&lastname, "lastname", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&pw, "password", "", "Password (8+ characters)")
	cmd.Flags().StringVar(&course, "course", "", "Course to enrol in (optional)")
	cmd.Flags().BoolVar(&terms, "terms", false, "Accept the terms and conditions")
	return cmd
}

func newPrefillCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "prefill",
		Short: "Show the cached input of the last full registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			partial, ok, err := client.LoadPartial(client.NewFileKV(opts.statePath))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing cached")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "firstname: %s\nemail:     %s\n", partial.Firstname, partial.Email)
			return nil
		},
	}
}

func newSubmitter(cmd *cobra.Command, opts *options) (*client.Submitter, error) {
	out := cmd.OutOrStdout()
	return client.New(client.Config{
		BaseURL:       opts.apiURL,
		Store:         client.NewFileKV(opts.statePath),
		RedirectDelay: opts.redirectDelay,
		// A CLI has no lingering status line to clear.
		StatusTimeout: time.Millisecond,
		OnNavigate: func(url string) {
			fmt.Fprintf(out, "continue at %s\n", url)
		},
	})
}

func submit(cmd *cobra.Command, opts *options, form *client.Form) error {
	sub, err := newSubmitter(cmd, opts)
	if err != nil {
		return err
	}
	defer sub.Close()
	return run(cmd, sub, form)
}

// run submits form and prints the outcome. Scheduled redirects are waited
// for so the user sees where to go next.
func run(cmd *cobra.Command, sub *client.Submitter, form *client.Form) error {
	res, err := sub.Submit(cmd.Context(), form)
	if errors.Is(err, client.ErrInvalid) {
		errs := form.Errors()
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f, errs[f])
		}
		return errReported
	}
	if err != nil {
		msg := err.Error()
		var serr *client.ServerError
		if errors.As(err, &serr) {
			msg = serr.Message
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: "+msg)
		return errReported
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	if res.Redirect != "" {
		sub.Wait()
	}
	return nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".learnfast-state.json"
	}
	return filepath.Join(home, ".learnfast", "state.json")
}
