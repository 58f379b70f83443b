package main

import (
	"bufio"
	"context"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"

	"github.com/lupamo/realtime-collab/internal/db/bunx"
	"github.com/lupamo/realtime-collab/internal/repository"
	"github.com/lupamo/realtime-collab/internal/services/iam"
	"github.com/lupamo/realtime-collab/internal/token"
)

var (
	userEmailFlag    string
	userFullNameFlag string
	userPasswordFlag string
	userStdinFlag    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User management commands",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userEmailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if _, err := mail.ParseAddress(userEmailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		password := userPasswordFlag
		if userStdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		userRepo := repository.NewBunUserRepository(db)
		refreshTokenRepo := repository.NewBunRefreshTokenRepository(db)
		tokenService := token.NewService(cfg.JWT, refreshTokenRepo)
		iamService := iam.NewService(userRepo, tokenService, cfg.BcryptCost)

		user, err := iamService.Register(context.Background(), userEmailFlag, password, userFullNameFlag)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userEmailFlag, "email", "", "Email address (required)")
	usersCreateCmd.Flags().StringVar(&userFullNameFlag, "full-name", "", "Display name")
	usersCreateCmd.Flags().StringVar(&userPasswordFlag, "password", "", "Password")
	usersCreateCmd.Flags().BoolVar(&userStdinFlag, "stdin", false, "Read password from stdin")

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)
}
