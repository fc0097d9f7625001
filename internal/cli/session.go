package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"learnsnap/internal/auth"
	"learnsnap/internal/models"
	"learnsnap/internal/navigation"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to LearnSnap",
		Long:  "Log in with your email and password. Missing values are read from standard input.",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			a.nav.Enter(navigation.LoginPath)

			var err error
			if email == "" {
				if email, err = a.ask(out, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.ask(out, "Password: "); err != nil {
					return err
				}
			}

			res, err := a.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
			if err != nil {
				return fail("login", err)
			}
			fmt.Fprintf(out, "Welcome back, %s!\n", res.User.Username)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req models.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a LearnSnap account",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a.nav.Enter(navigation.SignupPath)

			var err error
			if req.Email == "" {
				if req.Email, err = a.ask(out, "Email: "); err != nil {
					return err
				}
			}
			if req.Username == "" {
				if req.Username, err = a.ask(out, "Username: "); err != nil {
					return err
				}
			}
			if req.Password == "" {
				if req.Password, err = a.ask(out, "Password: "); err != nil {
					return err
				}
			}

			created, err := a.auth.Signup(cmd.Context(), req)
			if err != nil {
				return fail("signup", err)
			}
			fmt.Fprintf(out, "Account %s created. Run `learnsnap login --email %s` to sign in.\n", created.Username, created.Email)
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Username, "username", "", "Display name (2-50 characters)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			a.auth.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		}),
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			st := a.session.State()
			if !st.IsAuthenticated {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			u := *st.User
			if refresh {
				a.nav.Enter(pathProfile)
				me, err := a.users.Me(ctx)
				if err != nil {
					return fail("refresh profile", err)
				}
				if err := a.session.UpdateUser(ctx, *me); err != nil {
					return fail("refresh profile", err)
				}
				u = *me
			}

			fmt.Fprintf(out, "%-10s %s\n", "Username:", u.Username)
			fmt.Fprintf(out, "%-10s %s\n", "Email:", u.Email)
			fmt.Fprintf(out, "%-10s %s\n", "Role:", u.Role)
			if info, err := auth.InspectToken(st.Token); err == nil && !info.ExpiresAt.IsZero() {
				if info.Expired(time.Now()) {
					fmt.Fprintf(out, "%-10s expired %s\n", "Session:", info.ExpiresAt.Local().Format(time.RFC822))
				} else {
					fmt.Fprintf(out, "%-10s valid until %s\n", "Session:", info.ExpiresAt.Local().Format(time.RFC822))
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the profile from the server first")
	return cmd
}
