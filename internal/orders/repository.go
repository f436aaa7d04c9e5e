package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// Repository owns order, order-item, and cash-collection persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateOrder inserts the order and its item snapshot rows.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindOrderByID loads the order with its items.
func (r *Repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder applies the provided column updates to the order.
func (r *Repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type listOrdersParams struct {
	UserID    *uuid.UUID
	CompanyID *uuid.UUID
	Status    *enums.OrderStatus
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *Repository) listOrders(ctx context.Context, params listOrdersParams) ([]models.Order, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.CompanyID != nil {
		query = query.Where("company_id = ?", *params.CompanyID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Order
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

// ListStalePending returns PENDING orders created before the cutoff.
func (r *Repository) ListStalePending(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// CreateCashCollection inserts the reconciliation row. The unique index on
// order_id makes duplicates a constraint violation.
func (r *Repository) CreateCashCollection(ctx context.Context, collection *models.CashCollection) (*models.CashCollection, error) {
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// FindCashCollectionByOrder returns the collection for an order, or nil.
func (r *Repository) FindCashCollectionByOrder(ctx context.Context, orderID uuid.UUID) (*models.CashCollection, error) {
	var row models.CashCollection
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

type listCashCollectionsParams struct {
	CompanyID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *Repository) listCashCollections(ctx context.Context, params listCashCollectionsParams) ([]models.CashCollection, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.CashCollection{}).
		Joins("JOIN orders ON orders.id = cash_collections.order_id").
		Where("orders.company_id = ?", params.CompanyID)
	if params.Cursor != nil {
		query = query.Where(
			"(cash_collections.created_at < ?) OR (cash_collections.created_at = ? AND cash_collections.id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.CashCollection
	err := query.
		Order("cash_collections.created_at DESC").
		Order("cash_collections.id DESC").
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

// FindUserByID loads a user row for driver validation.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
