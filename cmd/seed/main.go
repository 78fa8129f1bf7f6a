// Package main seeds the database with a few community checklist templates
// so a fresh install has something to browse.
//
// Usage: go run ./cmd/seed   (reads the same config as the server)
//
// Seeding is idempotent: templates are matched by title and skipped when
// they already exist.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/rs/xid"

	"github.com/sakif/completionist/internal/apperror"
	"github.com/sakif/completionist/internal/config"
	"github.com/sakif/completionist/internal/model"
	sqliteRepo "github.com/sakif/completionist/internal/repository/sqlite"
)

type sampleTemplate struct {
	template model.CommunityChecklist
	items    []string
}

// Sample data mirrors the kinds of runs completion trackers get used for.
var samples = []sampleTemplate{
	{
		template: model.CommunityChecklist{
			Title:       "Hollow Knight – 100% Completion",
			Description: "All charms, grubs, bosses, and true ending.",
			Platform:    "PC",
			Genre:       "Metroidvania",
		},
		items: []string{
			"Collect all 45 charms",
			"Rescue all 46 grubs",
			"Defeat every boss",
			"Achieve the true ending",
		},
	},
	{
		template: model.CommunityChecklist{
			Title:       "Final Fantasy X – Aeons and Side Quests",
			Description: "Capture monsters, get all celestial weapons, finish all side quests.",
			Platform:    "PlayStation",
			Genre:       "RPG",
		},
		items: []string{
			"Obtain every aeon",
			"Capture ten of each monster species",
			"Fully power up all celestial weapons",
			"Complete every side quest",
		},
	},
	{
		template: model.CommunityChecklist{
			Title:       "Metroid Prime – Minimal Item Run",
			Description: "No energy tanks, no missiles, hard mode speedrun.",
			Platform:    "GameCube",
			Genre:       "Action-Adventure",
		},
		items: []string{
			"Finish with zero energy tanks collected",
			"Skip every missile expansion",
			"Complete the run on hard mode",
		},
	},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	author, err := seedAuthor(ctx, db)
	if err != nil {
		logger.Error("failed to ensure seed author", slog.String("error", err.Error()))
		os.Exit(1)
	}

	existing, err := db.ListTemplates(ctx)
	if err != nil {
		logger.Error("failed to list templates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	present := make(map[string]bool, len(existing))
	for _, t := range existing {
		present[t.Title] = true
	}

	added := 0
	for _, sample := range samples {
		if present[sample.template.Title] {
			logger.Info("template already present, skipping",
				slog.String("title", sample.template.Title))
			continue
		}

		template := sample.template
		template.CreatedBy = author.ID
		template.ShareCode = xid.New().String()

		items := make([]model.CommunityChecklistItem, len(sample.items))
		for i, description := range sample.items {
			order := i + 1
			items[i] = model.CommunityChecklistItem{
				Description: description,
				Order:       &order,
			}
		}

		if err := db.CreateTemplate(ctx, &template, items); err != nil {
			logger.Error("failed to create template",
				slog.String("title", template.Title),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("template created",
			slog.Int64("id", template.ID),
			slog.String("title", template.Title),
			slog.String("shareCode", template.ShareCode),
		)
		added++
	}

	logger.Info("seeding complete", slog.Int("added", added))
}

// seedAuthor finds or creates the account that owns the sample templates.
// It has no password hash, so it cannot be logged into.
func seedAuthor(ctx context.Context, db *sqliteRepo.DB) (*model.User, error) {
	const email = "community@completionist.local"

	user, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	user = &model.User{
		Username: "completionist",
		Email:    email,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
