package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/patternscope/patternscope/db"
	"github.com/patternscope/patternscope/internal/config"
	"github.com/patternscope/patternscope/internal/db"
	"github.com/patternscope/patternscope/internal/repository/sqlite"
	"github.com/patternscope/patternscope/pkg/models"
)

// Creates an admin user, or promotes the account if the email already
// exists. Registration over the API always produces regular users, so this
// is the only way to bootstrap the admin surface.
func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		email      = flag.String("email", "", "admin email")
		password   = flag.String("password", "", "admin password (ignored when promoting an existing user)")
	)
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "Usage: create_admin -email <email> [-password <password>] [-config <path>]")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	repo := sqlite.New(database)

	existing, err := repo.GetUserByEmail(ctx, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup error: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		if existing.IsAdmin {
			fmt.Printf("User %s is already an admin.\n", *email)
			return
		}
		if _, err := database.Exec(ctx, `UPDATE users SET is_admin = 1 WHERE id = ?`, existing.ID); err != nil {
			fmt.Fprintf(os.Stderr, "Promote error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("User %s promoted to admin.\n", *email)
		return
	}

	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "Password must be at least 8 characters.")
		os.Exit(1)
	}
	pw := []byte(*password)
	if len(pw) > 72 {
		pw = pw[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
		os.Exit(1)
	}

	if _, err := repo.CreateUser(ctx, &models.User{Email: *email, PasswordHash: string(hash), IsAdmin: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Create error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin user created: %s\n", *email)
	fmt.Println("Please change the password after first login.")
}
