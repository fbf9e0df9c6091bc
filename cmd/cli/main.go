// Command cli is the operator tool: it seeds the first admin account and
// verifies credentials against the running database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/shillingix/backend/infra/initializer"
	"github.com/shillingix/backend/pkg/app"
	"github.com/shillingix/backend/pkg/config"
	domainuser "github.com/shillingix/backend/pkg/domain/user"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.LoadAppConfig(slog.Default(), ".env")
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		color.Red("Failed to initialize dependencies: %v", err)
		os.Exit(1)
	}
	a := app.New(deps, cfg)
	ctx := context.Background()

	switch os.Args[1] {
	case "seed-admin":
		if len(os.Args) < 4 {
			fmt.Println("Usage: cli seed-admin <username> <email> [phone]")
			os.Exit(1)
		}
		username, email := os.Args[2], os.Args[3]
		phone := ""
		if len(os.Args) > 4 {
			phone = os.Args[4]
		}
		password, err := promptPassword()
		if err != nil {
			color.Red("Failed to read password: %v", err)
			os.Exit(1)
		}
		u, err := a.UserService.Register(ctx, username, email, password, phone)
		if err != nil {
			color.Red("Failed to create user: %v", err)
			os.Exit(1)
		}
		if err := a.UserService.UpdateRole(ctx, u.ID, string(domainuser.RoleAdmin)); err != nil {
			color.Red("Failed to promote user: %v", err)
			os.Exit(1)
		}
		color.Green("Admin %s created: %s", u.Username, u.ID)
	case "login":
		if len(os.Args) < 3 {
			fmt.Println("Usage: cli login <identity>")
			os.Exit(1)
		}
		password, err := promptPassword()
		if err != nil {
			color.Red("Failed to read password: %v", err)
			os.Exit(1)
		}
		u, err := a.AuthService.Login(ctx, os.Args[2], password)
		if err != nil {
			color.Red("Login failed: %v", err)
			os.Exit(1)
		}
		color.Green("Authenticated as %s (%s)", u.Username, u.Role)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  seed-admin <username> <email> [phone]  create an admin account")
	fmt.Println("  login <identity>                       verify credentials")
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
