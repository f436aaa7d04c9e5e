package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// Service exposes catalog administration and the loader contracts consumed by
// cart and checkout.
type Service interface {
	CreateProduct(ctx context.Context, actor Actor, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	SetStock(ctx context.Context, actor Actor, productID uuid.UUID, stock int) (*models.Product, error)
	SetProductActive(ctx context.Context, actor Actor, productID uuid.UUID, active bool) (*models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListPublicProducts(ctx context.Context, params ListProductsParams) (*ProductList, error)
	ListVendorProducts(ctx context.Context, actor Actor, params ListProductsParams) (*ProductList, error)

	UpsertDeliveryZone(ctx context.Context, actor Actor, input UpsertDeliveryZoneInput) (*models.DeliveryZone, error)
	ListDeliveryZones(ctx context.Context, actor Actor) ([]models.DeliveryZone, error)

	Lines(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Line, error)
	Companies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CompanySummary, error)
	DeliveryTermsFor(ctx context.Context, companyID uuid.UUID, zone string) (DeliveryTerms, error)
}

type service struct {
	repo     *Repository
	delivery config.DeliveryConfig
}

// NewService builds the catalog service.
func NewService(repo *Repository, delivery config.DeliveryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, delivery: delivery}, nil
}

func (s *service) CreateProduct(ctx context.Context, actor Actor, input CreateProductInput) (*models.Product, error) {
	companyID, err := requireCompany(actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku is required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	minOrderQty := input.MinOrderQty
	if minOrderQty <= 0 {
		minOrderQty = 1
	}
	if input.MaxQty != nil && *input.MaxQty < minOrderQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max quantity cannot be below minimum order quantity")
	}

	product := &models.Product{
		CompanyID:   companyID,
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		MinOrderQty: minOrderQty,
		MaxQty:      input.MaxQty,
		IsActive:    true,
		Zones:       pq.StringArray(input.Zones),
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor Actor, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.MinOrderQty != nil {
		if *input.MinOrderQty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order quantity must be positive")
		}
		updates["min_order_qty"] = *input.MinOrderQty
	}
	if input.MaxQty != nil {
		updates["max_qty"] = *input.MaxQty
	}
	if input.Zones != nil {
		updates["zones"] = pq.StringArray(*input.Zones)
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *service) SetStock(ctx context.Context, actor Actor, productID uuid.UUID, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, product.ID, map[string]any{"stock": stock}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	product.Stock = stock
	return product, nil
}

func (s *service) SetProductActive(ctx context.Context, actor Actor, productID uuid.UUID, active bool) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if product.IsActive == active {
		return product, nil
	}
	if err := s.repo.UpdateProduct(ctx, product.ID, map[string]any{"is_active": active}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product state")
	}
	product.IsActive = active
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListPublicProducts(ctx context.Context, params ListProductsParams) (*ProductList, error) {
	return s.list(ctx, listProductsParams{
		ActiveOnly: true,
		Search:     params.Search,
		Limit:      pagination.LimitWithBuffer(params.Limit),
	}, params.Cursor)
}

func (s *service) ListVendorProducts(ctx context.Context, actor Actor, params ListProductsParams) (*ProductList, error) {
	companyID, err := requireCompany(actor)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, listProductsParams{
		CompanyID: &companyID,
		Search:    params.Search,
		Limit:     pagination.LimitWithBuffer(params.Limit),
	}, params.Cursor)
}

func (s *service) list(ctx context.Context, params listProductsParams, rawCursor string) (*ProductList, error) {
	if rawCursor != "" {
		cursor, err := pagination.ParseCursor(rawCursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, next, err := s.repo.listProducts(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ProductList{Items: rows, Cursor: cursor}, nil
}

func (s *service) UpsertDeliveryZone(ctx context.Context, actor Actor, input UpsertDeliveryZoneInput) (*models.DeliveryZone, error) {
	companyID, err := requireCompany(actor)
	if err != nil {
		return nil, err
	}
	zone := strings.TrimSpace(input.Zone)
	if zone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone is required")
	}
	if input.FeeCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	if input.MinDays <= 0 || input.MaxDays < input.MinDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery day window")
	}

	row := &models.DeliveryZone{
		CompanyID: companyID,
		Zone:      zone,
		FeeCents:  input.FeeCents,
		MinDays:   input.MinDays,
		MaxDays:   input.MaxDays,
	}
	if err := s.repo.UpsertDeliveryZone(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert delivery zone")
	}
	saved, err := s.repo.FindDeliveryZone(ctx, companyID, zone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload delivery zone")
	}
	return saved, nil
}

func (s *service) ListDeliveryZones(ctx context.Context, actor Actor) ([]models.DeliveryZone, error) {
	companyID, err := requireCompany(actor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDeliveryZones(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery zones")
	}
	return rows, nil
}

func (s *service) Lines(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Line, error) {
	products, err := s.repo.LoadProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	lines := make(map[uuid.UUID]Line, len(products))
	for id, product := range products {
		lines[id] = lineFromProduct(product)
	}
	return lines, nil
}

func (s *service) Companies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CompanySummary, error) {
	companies, err := s.repo.LoadCompaniesByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load companies")
	}
	out := make(map[uuid.UUID]CompanySummary, len(companies))
	for id, company := range companies {
		out[id] = CompanySummary{ID: company.ID, Name: company.Name}
	}
	return out, nil
}

func (s *service) DeliveryTermsFor(ctx context.Context, companyID uuid.UUID, zone string) (DeliveryTerms, error) {
	if zone != "" {
		row, err := s.repo.FindDeliveryZone(ctx, companyID, zone)
		if err != nil {
			return DeliveryTerms{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery zone")
		}
		if row != nil {
			return DeliveryTerms{FeeCents: row.FeeCents, MinDays: row.MinDays, MaxDays: row.MaxDays}, nil
		}
	}

	company, err := s.repo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeliveryTerms{}, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return DeliveryTerms{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return DeliveryTerms{
		FeeCents: company.DefaultDeliveryFeeCents,
		MinDays:  s.delivery.DefaultMinDays,
		MaxDays:  s.delivery.DefaultMaxDays,
	}, nil
}

// ownedProduct loads the product and enforces company scoping for non-admins.
func (s *service) ownedProduct(ctx context.Context, actor Actor, productID uuid.UUID) (*models.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return product, nil
	}
	if actor.CompanyID == nil || *actor.CompanyID != product.CompanyID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to company")
	}
	return product, nil
}

func requireCompany(actor Actor) (uuid.UUID, error) {
	if actor.CompanyID == nil || *actor.CompanyID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "company context missing")
	}
	return *actor.CompanyID, nil
}
