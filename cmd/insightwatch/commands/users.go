package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"insightwatch/internal/api"
	"insightwatch/internal/guard"
	"insightwatch/internal/scope"
)

var (
	createUsername   string
	createName       string
	createDepartment string
	createMacID      string
	createRoleKey    string

	updateFields map[string]string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Subject management (department heads and C-suite only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored users",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed(guard.PathSubjectPicker); err != nil {
			return err
		}
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tDEPARTMENT\tROLE\tACTIVE")
		for _, u := range users {
			key := scope.CanonicalKey(u.CompanyUsernameNorm, u.CompanyUsername)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", key, u.FullName, u.Department, u.RoleKey, u.IsActive)
		}
		return w.Flush()
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a monitored user record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed(guard.PathSubjectPicker); err != nil {
			return err
		}
		user, err := client.CreateUser(cmd.Context(), api.CreateUserRequest{
			CompanyUsername: createUsername,
			FullName:        createName,
			Department:      createDepartment,
			UserMacID:       createMacID,
			RoleKey:         createRoleKey,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Printf("Created %s\n", scope.CanonicalKey(user.CompanyUsernameNorm, user.CompanyUsername))
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <key>",
	Short: "Patch fields on a monitored user record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed(guard.PathSubjectPicker); err != nil {
			return err
		}
		if len(updateFields) == 0 {
			return fmt.Errorf("nothing to update; pass at least one --set field=value")
		}
		patch := make(map[string]any, len(updateFields))
		for k, v := range updateFields {
			patch[k] = v
		}
		user, err := client.UpdateUser(cmd.Context(), args[0], patch)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		fmt.Printf("Updated %s\n", scope.CanonicalKey(user.CompanyUsernameNorm, user.CompanyUsername))
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <key>",
	Short: "Select the subject the scoped views (logs, screenshots, insights) show",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Selecting works off the detail view, which every role may reach.
		if err := ensureAllowed("/dashboard/users/" + args[0]); err != nil {
			return err
		}
		user, err := client.GetUser(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch subject: %w", err)
		}
		sub := scope.SubjectFromUser(user)
		sel.Set(sub)
		saveSelection(sub)
		fmt.Printf("Selected %s", sub.Key)
		if sub.DisplayName != "" {
			fmt.Printf(" (%s)", sub.DisplayName)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&createUsername, "username", "", "company username")
	usersCreateCmd.Flags().StringVar(&createName, "name", "", "full name")
	usersCreateCmd.Flags().StringVar(&createDepartment, "department", "", "department")
	usersCreateCmd.Flags().StringVar(&createMacID, "mac", "", "device MAC id")
	usersCreateCmd.Flags().StringVar(&createRoleKey, "role", "", "role key")
	usersCreateCmd.MarkFlagRequired("username")

	usersUpdateCmd.Flags().StringToStringVar(&updateFields, "set", nil, "field=value pairs to patch")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd)
	rootCmd.AddCommand(usersCmd, selectCmd)
}
