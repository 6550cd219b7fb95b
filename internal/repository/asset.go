package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

// AssetRepository records uploaded file metadata.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// Insert stores a freshly uploaded asset.
func (r *AssetRepository) Insert(ctx context.Context, a *model.Asset) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assets (id, object_key, file_name, mime_type, size, pages, created_at)
		VALUES ($1,$2,$3,$4,$5,NULL,$6)
	`, a.ID, a.ObjectKey, a.FileName, a.MimeType, a.Size, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// Get returns an asset by id.
func (r *AssetRepository) Get(ctx context.Context, id string) (*model.Asset, error) {
	var a model.Asset
	row := r.pool.QueryRow(ctx, `
		SELECT id, object_key, file_name, mime_type, size, pages, created_at
		FROM assets WHERE id=$1
	`, id)
	if err := row.Scan(&a.ID, &a.ObjectKey, &a.FileName, &a.MimeType, &a.Size, &a.Pages, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("select asset: %w", err)
	}
	return &a, nil
}

// SetPages records the page count found by the PDF scan.
func (r *AssetRepository) SetPages(ctx context.Context, id string, pages int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assets SET pages=$1 WHERE id=$2
	`, pages, id)
	if err != nil {
		return fmt.Errorf("update asset pages: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
