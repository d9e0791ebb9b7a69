package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/database"
	"github.com/gurukit/gurukit-backend/internal/logger"
	"github.com/gurukit/gurukit-backend/internal/repository"
	"github.com/gurukit/gurukit-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	email := flag.String("email", "", "Teacher email")
	flag.Parse()
	if *email == "" {
		fmt.Println("Usage: reset-password -email <email>")
		os.Exit(2)
	}

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

	// ─── Connect to Redis ──────────────────────────────────────────────
	// The active session is dropped so old tokens stop working.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	authService := service.NewAuthService(cfg, repository.NewUserRepository(pool), service.NewRedisSessionStore(rdb), log)

	fmt.Print("Enter New Password: ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	if len(b) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	u, err := authService.ResetPassword(ctx, *email, string(b))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fmt.Printf("Error: no account for %s\n", *email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to reset password")
	}
	fmt.Printf("Password for '%s' (%s) has been reset.\n", u.FullName, u.Email)
}
