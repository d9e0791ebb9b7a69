package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gurukit/gurukit-backend/internal/config"
	"github.com/gurukit/gurukit-backend/internal/content"
	"github.com/gurukit/gurukit-backend/internal/database"
	"github.com/gurukit/gurukit-backend/internal/logger"
	"github.com/gurukit/gurukit-backend/internal/model"
	"github.com/gurukit/gurukit-backend/internal/repository"
	"github.com/gurukit/gurukit-backend/internal/service"
)

// seed-documents imports soal JSON files or modul markdown files into a
// teacher's library, without going through the generator.
func main() {
	email := flag.String("email", "", "Owner email")
	docType := flag.String("type", "soal", "Document type: soal or modul")
	title := flag.String("title", "", "Document title (defaults to the file name)")
	flag.Parse()

	files := flag.Args()
	if *email == "" || len(files) == 0 {
		fmt.Println("Usage: seed-documents -email <email> [-type soal|modul] [-title T] <file>...")
		os.Exit(2)
	}
	kind := model.DocumentType(*docType)
	if !kind.Valid() {
		fmt.Printf("Error: unknown type %q\n", *docType)
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	documentService := service.NewDocumentService(repository.NewDocumentRepository(pool), nil, log)

	owner, err := userRepo.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("Owner not found")
	}

	fmt.Printf("=== Seeding %d %s document(s) for %s ===\n", len(files), kind, owner.Email)

	failed := 0
	for _, path := range files {
		doc, err := load(kind, path, *title)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", path, err)
			failed++
			continue
		}
		if err := documentService.Create(ctx, owner.ID, doc); err != nil {
			fmt.Printf("  ✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("  ✓ %s -> %s\n", path, doc.ID)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func load(kind model.DocumentType, path, title string) (*model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	var body interface{}
	switch kind {
	case model.DocumentTypeSoal:
		res, err := content.ParseSoal(raw)
		if err != nil {
			return nil, err
		}
		for _, w := range res.Warnings {
			fmt.Printf("  ! %s: %s\n", path, w)
		}
		body = res.Soal
	default:
		m, err := content.ParseModul(string(raw))
		if err != nil {
			return nil, err
		}
		body = m
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return &model.Document{
		Title:    title,
		Type:     kind,
		Content:  encoded,
		Metadata: map[string]string{"source": "seed"},
	}, nil
}
