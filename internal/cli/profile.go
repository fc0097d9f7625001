package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"learnsnap/internal/models"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathProfile); err != nil {
				return fail("profile", err)
			}
			me, err := a.users.Me(ctx)
			if err != nil {
				return fail("profile", err)
			}
			printProfile(cmd, *me)
			return nil
		}),
	}

	var req models.UpdateProfileRequest
	update := &cobra.Command{
		Use:   "update",
		Short: "Update your username, bio or profile image",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathProfile); err != nil {
				return fail("update profile", err)
			}
			flags := cmd.Flags()
			if !flags.Changed("username") && !flags.Changed("bio") && !flags.Changed("image") {
				return fmt.Errorf("update profile: nothing to change, pass --username, --bio or --image")
			}
			if !flags.Changed("username") {
				req.Username = a.currentUser().Username
			}
			u, err := a.users.UpdateProfile(ctx, req)
			if err != nil {
				return fail("update profile", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			printProfile(cmd, *u)
			return nil
		}),
	}
	update.Flags().StringVar(&req.Username, "username", "", "New username (2-50 characters)")
	update.Flags().StringVar(&req.Bio, "bio", "", "Short bio (up to 500 characters)")
	update.Flags().StringVar(&req.ProfileImage, "image", "", "Profile image URL")

	cmd.AddCommand(update)
	return cmd
}

func printProfile(cmd *cobra.Command, u models.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %s\n", "Username:", u.Username)
	fmt.Fprintf(out, "%-10s %s\n", "Email:", u.Email)
	fmt.Fprintf(out, "%-10s %s\n", "Role:", u.Role)
	if u.Bio != "" {
		fmt.Fprintf(out, "%-10s %s\n", "Bio:", u.Bio)
	}
	if u.ProfileImage != "" {
		fmt.Fprintf(out, "%-10s %s\n", "Image:", u.ProfileImage)
	}
	if u.CreatedAt != "" {
		fmt.Fprintf(out, "%-10s %s\n", "Joined:", u.CreatedAt)
	}
}
