package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"noteful/internal/cascade"
	"noteful/internal/config"
	"noteful/internal/db"
	"noteful/internal/named"
	"noteful/internal/notes"
	"noteful/internal/seed"
)

func main() {
	drop := flag.Bool("drop", true, "Drop the database before seeding")
	file := flag.String("file", "", "Seed from this JSON file instead of the bundled sample data")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Prevent destructive operations in production
	if cfg.Environment == "prod" && *drop {
		log.Fatalf("refusing to drop the database in the prod environment")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	data, err := loadData(*file)
	if err != nil {
		log.Fatalf("failed to load seed data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer db.Disconnect(database, 5*time.Second)

	if *drop {
		logger.Info("dropping database", "database", cfg.MongoDatabase)
		if err := database.Drop(ctx); err != nil {
			log.Fatalf("failed to drop database: %v", err)
		}
	}

	noteRepo := notes.NewRepo(database)
	folderRepo := named.NewRepo(database, named.FolderKind)
	tagRepo := named.NewRepo(database, named.TagKind)
	for _, ensure := range []func(context.Context) error{
		noteRepo.EnsureIndexes, folderRepo.EnsureIndexes, tagRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("failed to ensure indexes: %v", err)
		}
	}

	coord := cascade.NewCoordinator(cascade.Options{}, logger)
	folderSvc := named.NewService(folderRepo, named.FolderKind, coord, nil, logger)
	tagSvc := named.NewService(tagRepo, named.TagKind, coord, nil, logger)
	noteSvc := notes.NewService(noteRepo, folderSvc, tagSvc, logger)

	counts, err := seed.Apply(ctx, data, noteSvc, folderSvc, tagSvc)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	logger.Info("seed complete",
		"folders", counts.Folders,
		"tags", counts.Tags,
		"notes", counts.Notes,
	)
}

func loadData(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(raw)
}
