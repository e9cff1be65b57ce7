package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"insightwatch/internal/api"
	"insightwatch/internal/session"
)

var (
	loginEmail    string
	loginPassword string

	registerName       string
	registerDepartment string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your company email and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := sess.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			if errors.Is(err, session.ErrInvalidLogin) {
				return err
			}
			return fmt.Errorf("login: %w", err)
		}
		fmt.Printf("Logged in as %s (%s", id.Subject, id.Role)
		if id.Department != "" {
			fmt.Printf(", %s", id.Department)
		}
		fmt.Println(")")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Destroy the session and clear all client state",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sess.IsAuthenticated() {
			return errors.New("not logged in")
		}
		id, err := sess.RefreshIdentity(cmd.Context())
		if err != nil {
			// Fall back to the cached identity when the backend is away.
			if cached := sess.CurrentIdentity(); cached != nil {
				id = *cached
			} else {
				return err
			}
		}
		fmt.Printf("subject:    %s\n", id.Subject)
		fmt.Printf("role:       %s\n", id.Role)
		if id.Department != "" {
			fmt.Printf("department: %s\n", id.Department)
		}
		if sub := sel.Get(); sub != nil {
			fmt.Printf("selected:   %s\n", sub.Key)
		}
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset the password for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := client.ForgotPassword(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		if msg == "" {
			msg = "Password updated. Please login."
		}
		fmt.Println(msg)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new dashboard account (department member)",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.Register(cmd.Context(), api.RegisterRequest{
			FullName:   registerName,
			Email:      loginEmail,
			Password:   loginPassword,
			Department: registerDepartment,
		})
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Printf("Account created for %s. Run `insightwatch login` to sign in.\n", user.CompanyUsername)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "company email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "company email")
	registerCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	registerCmd.Flags().StringVar(&registerDepartment, "department", "", "department")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("name")

	resetPasswordCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "company email")
	resetPasswordCmd.Flags().StringVarP(&loginPassword, "new-password", "p", "", "new password")
	resetPasswordCmd.MarkFlagRequired("email")
	resetPasswordCmd.MarkFlagRequired("new-password")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, resetPasswordCmd)
}
