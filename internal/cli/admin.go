package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/service"
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE:  runAdminCreate,
	}
	createCmd.Flags().String("email", "", "Account email")
	createCmd.Flags().String("password", "", "Account password (min 6 characters)")
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("role", model.RoleAdmin, "Role: admin or operator")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE:  runAdminList,
	}
	listCmd.Flags().String("role", "", "Only show accounts with this role")

	passwdCmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change an account password",
		RunE:  runAdminPasswd,
	}
	passwdCmd.Flags().String("email", "", "Account email")
	passwdCmd.Flags().String("password", "", "New password (min 6 characters)")
	_ = passwdCmd.MarkFlagRequired("email")
	_ = passwdCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(createCmd, listCmd, passwdCmd)
	return adminCmd
}

const minPasswordLength = 6

func withUsers(cmd *cobra.Command, fn func(users service.UserService) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	return fn(service.NewUserService(db))
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")

	if len(password) < minPasswordLength {
		return fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}
	if name == "" {
		name = email
	}

	return withUsers(cmd, func(users service.UserService) error {
		user, err := users.CreateUser(cmd.Context(), &service.CreateUserRequest{
			Email:    email,
			Password: password,
			Name:     name,
			Role:     role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Email, user.ID)
		return nil
	})
}

func runAdminList(cmd *cobra.Command, args []string) error {
	role, _ := cmd.Flags().GetString("role")

	return withUsers(cmd, func(users service.UserService) error {
		list, err := users.ListUsers(cmd.Context(), service.UserFilters{Role: role})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Email", "Name", "Role", "Created")
		for _, u := range list {
			if err := table.Append(u.Email, u.Name, u.Role, u.CreatedAt.Format("2006-01-02 15:04")); err != nil {
				return err
			}
		}
		return table.Render()
	})
}

func runAdminPasswd(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if len(password) < minPasswordLength {
		return fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}

	return withUsers(cmd, func(users service.UserService) error {
		user, err := users.GetUserByEmail(cmd.Context(), email)
		if err != nil {
			return err
		}
		if _, err := users.UpdateUser(cmd.Context(), user.ID, &service.UpdateUserRequest{Password: &password}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", user.Email)
		return nil
	})
}
