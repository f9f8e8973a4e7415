package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, _, err := clientComponents(cmd)
		if err != nil {
			return err
		}
		if err := flow.Logout(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Signed out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether you are signed in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, _, err := clientComponents(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		s, err := flow.CurrentSession(ctx)
		if err != nil {
			return err
		}
		number, err := flow.UserPhone(ctx)
		if err != nil {
			return err
		}
		if number == "" {
			number = "-"
		}

		if s == nil {
			pterm.Warning.Println("Not signed in, run `resy login`")
			pterm.Println(mutedStyle.Render("Phone: " + number))
			return nil
		}

		expires := "unknown"
		if !s.ExpiresAt.IsZero() {
			expires = s.ExpiresAt.Local().Format("Jan 2, 2006 15:04")
		}
		pterm.Success.Println("Signed in")
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Phone", number},
			{"User", pterm.Sprint(s.UserID)},
			{"Signed in", s.IssuedAt.Local().Format("Jan 2, 2006 15:04")},
			{"Expires", expires},
		}).Render()
	},
}
