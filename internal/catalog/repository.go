package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// Repository wires together product, company, and delivery-zone persistence.
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

// FindProductByID loads the product without associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LoadProductsByIDs returns the catalog rows for the requested ids keyed by id.
// Missing ids are simply absent from the map; callers decide how to report them.
func (r *Repository) LoadProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// CreateProduct persists a new listing.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the provided column updates to the product.
func (r *Repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DecrementStock runs the guarded decrement used at checkout. It reports
// false when the guard fails, meaning stock was exhausted concurrently.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type listProductsParams struct {
	CompanyID  *uuid.UUID
	ActiveOnly bool
	Search     string
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *Repository) listProducts(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if params.CompanyID != nil {
		query = query.Where("company_id = ?", *params.CompanyID)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Product
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

// FindCompanyByID loads a company row.
func (r *Repository) FindCompanyByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// LoadCompaniesByIDs returns companies keyed by id.
func (r *Repository) LoadCompaniesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Company, error) {
	out := make(map[uuid.UUID]models.Company, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Company
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindDeliveryZone loads the vendor's fee row for a zone, or nil when absent.
func (r *Repository) FindDeliveryZone(ctx context.Context, companyID uuid.UUID, zone string) (*models.DeliveryZone, error) {
	var row models.DeliveryZone
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND zone = ?", companyID, zone).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListDeliveryZones returns all fee rows for the company.
func (r *Repository) ListDeliveryZones(ctx context.Context, companyID uuid.UUID) ([]models.DeliveryZone, error) {
	var rows []models.DeliveryZone
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("zone ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertDeliveryZone creates or refreshes the (company, zone) fee row.
func (r *Repository) UpsertDeliveryZone(ctx context.Context, row *models.DeliveryZone) error {
	existing, err := r.FindDeliveryZone(ctx, row.CompanyID, row.Zone)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(row).Error
	}
	return r.db.WithContext(ctx).
		Model(&models.DeliveryZone{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"fee_cents":  row.FeeCents,
			"min_days":   row.MinDays,
			"max_days":   row.MaxDays,
			"updated_at": time.Now().UTC(),
		}).Error
}

// FindUserByID loads a user row for driver validation and zone lookups.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAddressByID loads an address row.
func (r *Repository) FindAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// ListVendorUsers returns the active users attached to a company. The
// notifications worker fans order_created out to them.
func (r *Repository) ListVendorUsers(ctx context.Context, companyID uuid.UUID) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Find(&rows).Error
	return rows, err
}
