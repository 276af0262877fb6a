package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"admissions-service/internal/catalog"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// CatalogSeed is the YAML layout of the catalog seed file.
type CatalogSeed struct {
	Careers           []catalog.Career           `yaml:"careers"`
	Modalities        []catalog.Modality         `yaml:"modalities"`
	RequiredDocuments []catalog.RequiredDocument `yaml:"required_documents"`
	Scholarships      []catalog.Scholarship      `yaml:"scholarships"`
}

func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed %s: %w", path, err)
	}
	return &seed, nil
}

// SeedCatalog fills the catalog tables from path when they are empty.
// A missing seed file is not an error.
func SeedCatalog(ctx context.Context, db *bun.DB, path string) error {
	count, err := db.NewSelect().Model((*catalog.Career)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count careers: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed, err := LoadCatalogSeed(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("catalog seed file not found, skipping", "path", path)
		return nil
	}
	if err != nil {
		return err
	}

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := insertAll(ctx, tx, &seed.Careers); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, &seed.Modalities); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, &seed.RequiredDocuments); err != nil {
			return err
		}
		return insertAll(ctx, tx, &seed.Scholarships)
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	slog.Info("catalog seeded",
		"careers", len(seed.Careers),
		"modalities", len(seed.Modalities),
		"required_documents", len(seed.RequiredDocuments),
		"scholarships", len(seed.Scholarships),
	)
	return nil
}

func insertAll[T any](ctx context.Context, tx bun.Tx, rows *[]T) error {
	if len(*rows) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(rows).Exec(ctx)
	return err
}
