package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

func createUserCmd() *cobra.Command {
	var (
		name       string
		email      string
		password   string
		role       string
		department string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "create an account with any role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store.Driver == config.StoreDriverMemory {
				return fmt.Errorf("create-user needs a persistent store, got %s", cfg.Store.Driver)
			}
			backend, err := openBackend(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			accounts := service.NewAuthService(*cfg, service.AuthDependencies{
				UserRepo:       backend.Store.Users,
				DepartmentRepo: backend.Store.Departments,
			})
			input := service.CreateUserInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     domain.Role(role),
			}
			if department != "" {
				input.DepartmentID = &department
			}
			user, err := accounts.CreateUser(cmd.Context(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "citizen, staff or admin")
	cmd.Flags().StringVar(&department, "department", "", "department id for staff")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
