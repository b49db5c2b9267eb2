package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mowens/linkvault/internal/assets"
	"github.com/mowens/linkvault/internal/config"
	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/domain"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/norm"
	"github.com/mowens/linkvault/internal/store"
)

// appEnv bundles what most commands need: config, an open migrated
// database, the store, and the asset store.
type appEnv struct {
	cfg      *config.Config
	database *db.DB
	store    *store.Store
	assets   *assets.Store
	log      logger.Logger
}

func (a *appEnv) Close() {
	a.database.Close()
}

// openEnv loads config, opens the database (the --db flag wins), runs
// migrations, and wires the store and asset store.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.DBPath
	if flag := cmd.Flag("db"); flag != nil && flag.Value.String() != "" {
		dbPath = flag.Value.String()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := logger.New(cfg.LogLevel, true)
	return &appEnv{
		cfg:      cfg,
		database: database,
		store:    store.New(database),
		assets:   assets.New(cfg.AssetsDir, log),
		log:      log,
	}, nil
}

// resolveLink accepts a link UUID or a URL and returns the matching record.
func resolveLink(s *store.Store, identifier string) (*domain.Link, error) {
	if err := domain.ValidateUUID(identifier); err == nil {
		return s.Links.GetByUUID(identifier)
	}
	return s.Links.GetByURL(identifier)
}

// resolveFolder accepts a folder UUID or name.
func resolveFolder(s *store.Store, identifier string) (*domain.Folder, error) {
	if err := domain.ValidateUUID(identifier); err == nil {
		return s.Folders.GetByUUID(identifier)
	}
	return s.Folders.GetByName(identifier)
}

// resolveTag accepts a tag UUID or name.
func resolveTag(s *store.Store, identifier string) (*domain.Tag, error) {
	if err := domain.ValidateUUID(identifier); err == nil {
		return s.Tags.GetByUUID(identifier)
	}
	return s.Tags.GetByName(identifier)
}

// resolveOrCreateTag looks a tag up by name, creating it when missing.
func resolveOrCreateTag(s *store.Store, name string) (*domain.Tag, error) {
	if tag, err := s.Tags.GetByName(name); err == nil {
		return tag, nil
	}
	return s.Tags.Create(store.TagCreateParams{Name: norm.Name(name)})
}
