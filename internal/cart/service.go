package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/internal/catalog"
	"github.com/vendorahq/vendora-backend/internal/promotions"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogLoader interface {
	Lines(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Line, error)
	Companies(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.CompanySummary, error)
	DeliveryTermsFor(ctx context.Context, companyID uuid.UUID, zone string) (catalog.DeliveryTerms, error)
}

type promotionEvaluator interface {
	Evaluate(ctx context.Context, input promotions.LineInput) (promotions.LineResult, error)
	EvaluateBundles(ctx context.Context, lines []promotions.BundleLine, cartSubtotalCents int64, zone string) ([]promotions.BundleResult, error)
}

// Service exposes cart validation, pricing, and the saved cart.
type Service interface {
	Validate(ctx context.Context, items []ItemInput, zone string) (*ValidationResult, error)
	Quote(ctx context.Context, items []ItemInput, zone string, withEstimate bool) (*QuoteResult, error)

	SaveCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (*models.CartRecord, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    *Repository
	tx      txRunner
	catalog catalogLoader
	promos  promotionEvaluator
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, catalogSvc catalogLoader, promos promotionEvaluator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promotion evaluator required")
	}
	return &service{repo: repo, tx: tx, catalog: catalogSvc, promos: promos}, nil
}

// Quote validates and prices the request cart in one pass. An invalid cart
// still returns its validation detail so callers can report line problems.
func (s *service) Quote(ctx context.Context, items []ItemInput, zone string, withEstimate bool) (*QuoteResult, error) {
	validation, err := s.Validate(ctx, items, zone)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return &QuoteResult{Validation: validation, Groups: []VendorGroup{}}, nil
	}

	groups, summary, estimate, err := s.Group(ctx, validation.Lines, zone, withEstimate)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{
		Validation: validation,
		Groups:     groups,
		Summary:    summary,
		Estimate:   estimate,
	}, nil
}

// SaveCart replaces the user's saved cart with the provided lines. Lines are
// stored as product/quantity pairs only; pricing happens on read.
func (s *service) SaveCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	deduped := dedupeItems(items)
	for _, item := range deduped {
		if item.ProductID == uuid.Nil || item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "every line needs a product id and positive quantity")
		}
	}

	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record, err = repo.Create(ctx, &models.CartRecord{UserID: userID})
		}
		if err != nil {
			return err
		}

		lines := make([]models.CartItem, 0, len(deduped))
		for _, item := range deduped {
			lines = append(lines, models.CartItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if err := repo.ReplaceItems(ctx, record.ID, lines); err != nil {
			return err
		}

		saved, err = repo.FindByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return saved, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteByUser(ctx, userID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
