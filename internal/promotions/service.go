package promotions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	dbtypes "github.com/vendorahq/vendora-backend/pkg/db/types"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// Service exposes promotion evaluation for the cart path and the admin CRUD
// surface. Evaluation treats promotions as read-only rules; exactly one
// promotion applies per product, with bundles handled by a separate cart pass.
type Service interface {
	Evaluate(ctx context.Context, input LineInput) (LineResult, error)
	EvaluateBundles(ctx context.Context, lines []BundleLine, cartSubtotalCents int64, zone string) ([]BundleResult, error)

	CreatePromotion(ctx context.Context, actor Actor, input CreatePromotionInput) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, actor Actor, promotionID uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error)
	GetPromotion(ctx context.Context, actor Actor, promotionID uuid.UUID) (*models.Promotion, error)
	ListPromotions(ctx context.Context, actor Actor, params ListPromotionsParams) (*PromotionList, error)
	SetPromotionActive(ctx context.Context, actor Actor, promotionID uuid.UUID, active bool) (*models.Promotion, error)
}

type service struct {
	repo *Repository
}

// NewService builds the promotions service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreatePromotion(ctx context.Context, actor Actor, input CreatePromotionInput) (*models.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion name is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown promotion kind %q", input.Kind))
	}

	promotion := &models.Promotion{
		Name:             strings.TrimSpace(input.Name),
		Kind:             input.Kind,
		ValueCents:       input.ValueCents,
		MinPurchaseCents: input.MinPurchaseCents,
		MaxDiscountCents: input.MaxDiscountCents,
		BuyQuantity:      input.BuyQuantity,
		GetQuantity:      input.GetQuantity,
		BundleProductIDs: dbtypes.UUIDArray(input.BundleProductIDs),
		ProductIDs:       dbtypes.UUIDArray(input.ProductIDs),
		Zones:            pq.StringArray(input.Zones),
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		IsActive:         true,
	}
	if err := validatePromotionConfig(promotion); err != nil {
		return nil, err
	}

	created, err := s.repo.CreatePromotion(ctx, promotion)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promotion")
	}
	return created, nil
}

func (s *service) UpdatePromotion(ctx context.Context, actor Actor, promotionID uuid.UUID, input UpdatePromotionInput) (*models.Promotion, error) {
	promotion, err := s.GetPromotion(ctx, actor, promotionID)
	if err != nil {
		return nil, err
	}

	// Merge onto a copy first so the combined configuration can be validated
	// before anything is written.
	merged := *promotion
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion name cannot be empty")
		}
		merged.Name = name
		updates["name"] = name
	}
	if input.ValueCents != nil {
		merged.ValueCents = *input.ValueCents
		updates["value_cents"] = *input.ValueCents
	}
	if input.MinPurchaseCents != nil {
		merged.MinPurchaseCents = input.MinPurchaseCents
		updates["min_purchase_cents"] = *input.MinPurchaseCents
	}
	if input.MaxDiscountCents != nil {
		merged.MaxDiscountCents = input.MaxDiscountCents
		updates["max_discount_cents"] = *input.MaxDiscountCents
	}
	if input.BuyQuantity != nil {
		merged.BuyQuantity = input.BuyQuantity
		updates["buy_quantity"] = *input.BuyQuantity
	}
	if input.GetQuantity != nil {
		merged.GetQuantity = input.GetQuantity
		updates["get_quantity"] = *input.GetQuantity
	}
	if input.BundleProductIDs != nil {
		merged.BundleProductIDs = dbtypes.UUIDArray(*input.BundleProductIDs)
		updates["bundle_product_ids"] = merged.BundleProductIDs
	}
	if input.ProductIDs != nil {
		merged.ProductIDs = dbtypes.UUIDArray(*input.ProductIDs)
		updates["product_ids"] = merged.ProductIDs
	}
	if input.Zones != nil {
		merged.Zones = pq.StringArray(*input.Zones)
		updates["zones"] = merged.Zones
	}
	if input.StartsAt != nil {
		merged.StartsAt = *input.StartsAt
		updates["starts_at"] = *input.StartsAt
	}
	if input.EndsAt != nil {
		merged.EndsAt = *input.EndsAt
		updates["ends_at"] = *input.EndsAt
	}
	if len(updates) == 0 {
		return promotion, nil
	}
	if err := validatePromotionConfig(&merged); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePromotion(ctx, promotion.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion")
	}
	return s.GetPromotion(ctx, actor, promotion.ID)
}

func (s *service) GetPromotion(ctx context.Context, actor Actor, promotionID uuid.UUID) (*models.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if promotionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promotion id required")
	}
	promotion, err := s.repo.FindPromotionByID(ctx, promotionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promotion")
	}
	return promotion, nil
}

func (s *service) ListPromotions(ctx context.Context, actor Actor, params ListPromotionsParams) (*PromotionList, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	repoParams := listPromotionsParams{Limit: pagination.LimitWithBuffer(params.Limit)}
	if params.Kind != "" {
		kind, err := enums.ParsePromotionKind(params.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind filter")
		}
		repoParams.Kind = &kind
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}

	rows, next, err := s.repo.listPromotions(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &PromotionList{Items: rows, Cursor: cursor}, nil
}

func (s *service) SetPromotionActive(ctx context.Context, actor Actor, promotionID uuid.UUID, active bool) (*models.Promotion, error) {
	promotion, err := s.GetPromotion(ctx, actor, promotionID)
	if err != nil {
		return nil, err
	}
	if promotion.IsActive == active {
		return promotion, nil
	}
	if err := s.repo.UpdatePromotion(ctx, promotion.ID, map[string]any{"is_active": active}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promotion state")
	}
	promotion.IsActive = active
	return promotion, nil
}

// validatePromotionConfig enforces kind-specific configuration rules on the
// fully merged promotion.
func validatePromotionConfig(p *models.Promotion) error {
	if !p.EndsAt.After(p.StartsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "promotion must end after it starts")
	}
	if p.MinPurchaseCents != nil && *p.MinPurchaseCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum purchase cannot be negative")
	}
	if p.MaxDiscountCents != nil && *p.MaxDiscountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "maximum discount must be positive")
	}

	switch p.Kind {
	case enums.PromotionKindPercentage:
		if p.ValueCents <= 0 || p.ValueCents > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be between 1 and 100")
		}
		if len(p.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "promotion requires at least one product")
		}
	case enums.PromotionKindFixed:
		if p.ValueCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed discount must be positive")
		}
		if len(p.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "promotion requires at least one product")
		}
	case enums.PromotionKindBuyXGetY:
		if p.BuyQuantity == nil || *p.BuyQuantity < 1 || p.GetQuantity == nil || *p.GetQuantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "buy and get quantities must be at least 1")
		}
		if len(p.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "promotion requires at least one product")
		}
	case enums.PromotionKindBundle:
		if len(p.BundleProductIDs) < 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "bundle requires at least two products")
		}
		if p.ValueCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "bundle price must be positive")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown promotion kind %q", p.Kind))
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}
