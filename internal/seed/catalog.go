// Package seed loads starter data into a fresh database.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"terraai/internal/domain/services"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Projects []services.DevOpsProjectInput `yaml:"projects"`
}

// CatalogEntries returns the embedded DevOps gallery entries.
func CatalogEntries() ([]services.DevOpsProjectInput, error) {
	var f catalogFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return f.Projects, nil
}

// CatalogSeeder creates gallery entries through the catalog service so
// seeded rows pass the same validation as admin-created ones.
type CatalogSeeder struct {
	catalog services.CatalogService
	logger  *slog.Logger
}

func NewCatalogSeeder(catalog services.CatalogService, logger *slog.Logger) *CatalogSeeder {
	return &CatalogSeeder{catalog: catalog, logger: logger}
}

// Seed creates every embedded entry whose title is not in the catalog yet.
// It returns the number of entries created.
func (s *CatalogSeeder) Seed(ctx context.Context) (int, error) {
	entries, err := CatalogEntries()
	if err != nil {
		return 0, err
	}

	existing, err := s.catalog.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Title] = true
	}

	created := 0
	for i := range entries {
		in := &entries[i]
		if seen[in.Title] {
			s.logger.Debug("catalog entry exists, skipping", "title", in.Title)
			continue
		}
		p, err := s.catalog.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("create %q: %w", in.Title, err)
		}
		seen[p.Title] = true
		created++
	}

	s.logger.Info("catalog seeded", "created", created, "total", len(entries))
	return created, nil
}
