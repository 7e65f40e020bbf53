package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/platewise/recipebox/config"
	"github.com/platewise/recipebox/internal/application"
	"github.com/platewise/recipebox/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", "", "superuser email (required)")
	password := flag.String("password", "", "superuser password (required)")
	firstName := flag.String("first-name", "", "superuser first name")
	lastName := flag.String("last-name", "", "superuser last name")
	staff := flag.Bool("staff", true, "must stay true for superusers")
	superuser := flag.Bool("superuser", true, "must stay true for superusers")
	flag.Parse()

	if !*staff || !*superuser {
		log.Fatal("superusers must have staff=true and superuser=true")
	}
	if *email == "" || *password == "" {
		log.Fatal("both --email and --password are required")
	}
	normalized, err := application.NormalizeEmail(*email)
	if err != nil {
		log.Fatalf("invalid email: %v", err)
	}
	if len(*password) < application.MinPasswordLength {
		log.Fatalf("password must be at least %d characters", application.MinPasswordLength)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash, is_staff = TRUE, is_superuser = TRUE, updated_at = now()
		RETURNING id
	`, normalized, hash, strings.TrimSpace(*firstName), strings.TrimSpace(*lastName)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed superuser: %v", err)
	}
	fmt.Printf("superuser ready: id=%s email=%s\n", id, normalized)
}
