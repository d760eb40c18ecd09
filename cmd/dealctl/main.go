// main.go - Admin control tool for dealkart
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
	"gorm.io/gorm"

	"dealkart/internal"
	"dealkart/internal/seeder"
	"dealkart/internal/users"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&CreateAdminUserCommand{},
	&ChangeAdminPasswordCommand{},
	&MigrateCommand{},
	&SeedCommand{},
	&StatusCommand{},
}

func main() {
	flag.Parse()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			log.Printf("Warning: cleanup error: %v", err)
		}
	}()

	if err := cmd.Execute(context.Background(), app, args); err != nil {
		log.Fatalf("Command %s failed: %v", cmd.Name(), err)
	}
	log.Printf("Command %s completed successfully", cmd.Name())
}

func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		showUsageAndExit()
	}
	return args[0], args[1:]
}

func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func showUsageAndExit() {
	fmt.Println("Usage: dealctl <command> [args]")
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-25s %s\n", cmd.Name(), cmd.Description())
	}
	os.Exit(1)
}

// promptPassword reads a password without echoing it, confirming it once.
func promptPassword() (string, error) {
	fmt.Print("Enter new password: ")
	pwd1, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Confirm new password: ")
	pwd2, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(pwd1) != string(pwd2) {
		return "", fmt.Errorf("passwords do not match")
	}

	password := strings.TrimSpace(string(pwd1))
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// CreateAdminUserCommand implements the command to create an initial admin user
type CreateAdminUserCommand struct{}

func (c *CreateAdminUserCommand) Name() string { return "create-admin-user" }

func (c *CreateAdminUserCommand) Description() string { return "Creates an initial admin user" }

func (c *CreateAdminUserCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <email> [password]", c.Name())
	}
	email := args[0]

	var password string
	if len(args) >= 2 {
		password = args[1]
	} else {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := app.DBManager.GetConnection()
	if err := users.CreateAdminUser(db, email, password); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			log.Printf("User %s already exists", email)
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created admin user %s", email)
	return nil
}

// ChangeAdminPasswordCommand implements password update for an existing admin user
type ChangeAdminPasswordCommand struct{}

func (c *ChangeAdminPasswordCommand) Name() string { return "change-admin-password" }

func (c *ChangeAdminPasswordCommand) Description() string {
	return "Changes the password of an existing admin user"
}

func (c *ChangeAdminPasswordCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <email> [password]", c.Name())
	}
	email := args[0]

	db := app.DBManager.GetConnection()
	if _, err := users.FindByEmail(db, email); err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	var newPassword string
	if len(args) >= 2 {
		newPassword = args[1]
	} else {
		var err error
		newPassword, err = promptPassword()
		if err != nil {
			return err
		}
	}

	if err := users.ResetPassword(db, email, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Println("Password updated successfully")
	return nil
}

// MigrateCommand runs the database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	return app.DBManager.MigrateDatabase()
}

// SeedCommand populates the catalog and event log with demo data
type SeedCommand struct{}

func (c *SeedCommand) Name() string { return "seed" }

func (c *SeedCommand) Description() string { return "Seeds demo products and demo traffic" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app.Config.IsProduction() {
		return fmt.Errorf("refusing to seed demo data in production")
	}
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return seeder.Seed(app.DBManager.GetConnection(), app.EventLog, app.Logger)
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string { return "status" }

func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	var productCount int64
	if err := db.Table("products").Count(&productCount).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to count products: %w", err)
	}

	var userCount int64
	if err := db.Table("users").Count(&userCount).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to count users: %w", err)
	}

	data, err := app.EventLog.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	fmt.Printf("Environment:     %s\n", app.Config.Environment)
	fmt.Printf("Database:        %s\n", app.Config.DatabaseName)
	fmt.Printf("Event log:       %s\n", app.Config.EventLogName)
	fmt.Printf("Products:        %d\n", productCount)
	fmt.Printf("Admin users:     %d\n", userCount)
	fmt.Printf("Visitor events:  %d\n", len(data.Visitors))
	fmt.Printf("Click events:    %d\n", len(data.Clicks))
	return nil
}
