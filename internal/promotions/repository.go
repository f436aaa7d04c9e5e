package promotions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// Repository owns promotion persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreatePromotion persists a new promotion.
func (r *Repository) CreatePromotion(ctx context.Context, promotion *models.Promotion) (*models.Promotion, error) {
	if err := r.db.WithContext(ctx).Create(promotion).Error; err != nil {
		return nil, err
	}
	return promotion, nil
}

// FindPromotionByID loads a promotion row.
func (r *Repository) FindPromotionByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

// UpdatePromotion applies the provided column updates to the promotion.
func (r *Repository) UpdatePromotion(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListLive returns every promotion whose window covers the given instant.
// Product and zone matching happens in the evaluator; the live set is small.
func (r *Repository) ListLive(ctx context.Context, now time.Time) ([]models.Promotion, error) {
	var rows []models.Promotion
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND starts_at <= ? AND ends_at >= ?", true, now, now).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

type listPromotionsParams struct {
	Kind   *enums.PromotionKind
	Limit  int
	Cursor *pagination.Cursor
}

func (r *Repository) listPromotions(ctx context.Context, params listPromotionsParams) ([]models.Promotion, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Promotion{})
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Promotion
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	limit := params.Limit - 1
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
