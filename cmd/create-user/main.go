package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/database"
	"github.com/gurukit/gurukit-backend/internal/logger"
	"github.com/gurukit/gurukit-backend/internal/repository"
	"github.com/gurukit/gurukit-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	var email, name string
	flag.StringVar(&email, "email", "", "Teacher email")
	flag.StringVar(&name, "name", "", "Teacher full name")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Registration never touches the session store.
	authService := service.NewAuthService(cfg, repository.NewUserRepository(pool), nil, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Teacher Account ===")

	if name == "" {
		fmt.Print("Enter Full Name: ")
		name, _ = reader.ReadString('\n')
	}
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		os.Exit(1)
	}

	if email == "" {
		fmt.Print("Enter Email: ")
		email, _ = reader.ReadString('\n')
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		os.Exit(1)
	}

	password := readPassword("Enter Password: ")
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}
	if readPassword("Confirm Password: ") != password {
		fmt.Println("Error: Passwords do not match")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	u, err := authService.Register(ctx, email, name, password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			fmt.Printf("Error: %s is already registered\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! Teacher '%s' (%s) created with ID: %s\n", u.FullName, u.Email, u.ID)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	return string(b)
}
