package main

import (
	"flag"
	"fmt"
	"os"

	"beacon-chat/config"
	"beacon-chat/pkg/database"
)

const usage = `
Beacon Chat - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run GORM migrations
  status      Show database connection status
  seed        Seed the database with an admin account
  seed-dev    Seed with development/test data

Flags:
  -admin-email string  Admin email for seeding (default "admin@beacon.chat")
  -admin-pass string   Admin password for seeding (default "Admin@123!")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go seed-dev
`

func main() {
	adminEmail := flag.String("admin-email", "admin@beacon.chat", "Admin email for seeding")
	adminPass := flag.String("admin-pass", "Admin@123!", "Admin password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed":
		runSeedProduction(*adminEmail, *adminPass)
	case "seed-dev":
		runSeedDevelopment()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	if err := database.Migrate(); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migrations applied")
}

func showStatus() {
	if err := database.HealthCheck(); err != nil {
		fmt.Printf("Database unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database connection OK")
}

func runSeedProduction(adminEmail, adminPass string) {
	if err := database.Migrate(); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	seedCfg := database.DefaultSeedConfig()
	seedCfg.AdminEmail = adminEmail
	seedCfg.AdminPassword = adminPass
	seedCfg.CreateTestUsers = false

	if err := database.Seed(seedCfg); err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Admin account seeded")
}

func runSeedDevelopment() {
	if err := database.Migrate(); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	if err := database.Seed(database.DefaultSeedConfig()); err != nil {
		fmt.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Development data seeded")
}
