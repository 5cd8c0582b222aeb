package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/users"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		logg.Info("schema synchronized")
		return nil
	},
}

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

var createUserCmd = &cobra.Command{
	Use:     "create-user",
	Short:   "Create an operator account",
	Example: `  assetctl create-user --email admin@example.com --password s3cret! --name Admin --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := users.NewService(db.DB, logg).Create(cmd.Context(), users.CreateInput{
			Email:    userEmail,
			Password: userPassword,
			Name:     userName,
			Role:     models.UserRole(userRole),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> role=%s\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "account email (required)")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "initial password (required)")
	createUserCmd.Flags().StringVar(&userName, "name", "", "display name (required)")
	createUserCmd.Flags().StringVar(&userRole, "role", string(models.RoleStaff), "role: public, staff or admin")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
	_ = createUserCmd.MarkFlagRequired("name")
}
