// seed-admin creates the admin user, or resets its password and role when it exists.
//
// Usage (from backend directory):
//
//	ADMIN_USERNAME=... ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
//
// Flags override the env values.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
)

const defaultAdminUsername = "stockAdmin"

func envOr(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	username := flag.String("username", envOr("ADMIN_USERNAME", defaultAdminUsername), "admin username")
	email := flag.String("email", envOr("ADMIN_EMAIL", "admin@example.com"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (min 8 characters)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD or -password is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if !config.SkipMigrations() {
		models.MigrateTable()
	}

	user, created, err := models.UpsertAdmin(context.Background(), *username, *email, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin: %v\n", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("created admin user %q (id=%d)\n", user.Username, user.ID)
		return
	}
	fmt.Printf("updated admin user %q (id=%d); password reset\n", user.Username, user.ID)
}
