package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/ayah-auth/pkg/domain"
)

// FavoritesRepository handles bookmarked verses in Postgres.
type FavoritesRepository struct {
	db Querier
}

// NewFavoritesRepository creates a new favorites repository.
func NewFavoritesRepository(db Querier) *FavoritesRepository {
	return &FavoritesRepository{db: db}
}

// Add bookmarks ayah for the user. Returns domain.ErrFavoriteExists when the
// verse is already in the list.
func (r *FavoritesRepository) Add(ctx context.Context, userID uuid.UUID, ayah domain.Ayah) (*domain.Favorite, error) {
	payload, err := json.Marshal(ayah)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ayah: %w", err)
	}

	now := time.Now()
	fav := &domain.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		Ayah:      ayah,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO favorites (id, user_id, ayah_id, ayah, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, ayah_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		fav.ID, fav.UserID, ayah.ID, payload, fav.CreatedAt, fav.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrFavoriteExists
	}
	return fav, nil
}

// ListByUser returns the user's favorites, oldest first.
func (r *FavoritesRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	query := `
		SELECT id, user_id, ayah, created_at, updated_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []domain.Favorite
	for rows.Next() {
		var fav domain.Favorite
		var payload []byte
		if err := rows.Scan(&fav.ID, &fav.UserID, &payload, &fav.CreatedAt, &fav.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &fav.Ayah); err != nil {
			return nil, fmt.Errorf("failed to decode ayah: %w", err)
		}
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// Remove deletes the bookmark for ayahID. Removing a verse that is not in
// the list is not an error.
func (r *FavoritesRepository) Remove(ctx context.Context, userID uuid.UUID, ayahID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND ayah_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, ayahID)
	return err
}
