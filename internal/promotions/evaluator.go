package promotions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
)

// Evaluate picks the single best live promotion for the line and computes its
// discount. Bundles never apply here; they run in EvaluateBundles.
func (s *service) Evaluate(ctx context.Context, input LineInput) (LineResult, error) {
	if input.ProductID == uuid.Nil || input.Quantity <= 0 {
		return LineResult{}, nil
	}

	live, err := s.repo.ListLive(ctx, time.Now().UTC())
	if err != nil {
		return LineResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load live promotions")
	}

	best := bestCandidate(live, input)
	if best == nil {
		return LineResult{}, nil
	}
	return applyPromotion(best, input)
}

// bestCandidate filters the live set down to promotions covering this line and
// returns the winner: highest value, ties broken by earliest createdAt.
func bestCandidate(live []models.Promotion, input LineInput) *models.Promotion {
	var best *models.Promotion
	for i := range live {
		candidate := &live[i]
		if candidate.Kind == enums.PromotionKindBundle {
			continue
		}
		if !containsProduct(candidate.ProductIDs, input.ProductID) {
			continue
		}
		if !candidate.AppliesToZone(input.Zone) {
			continue
		}
		if candidate.MinPurchaseCents != nil && input.SubtotalCents < *candidate.MinPurchaseCents {
			continue
		}
		if best == nil ||
			candidate.ValueCents > best.ValueCents ||
			(candidate.ValueCents == best.ValueCents && candidate.CreatedAt.Before(best.CreatedAt)) {
			best = candidate
		}
	}
	return best
}

func applyPromotion(promotion *models.Promotion, input LineInput) (LineResult, error) {
	switch promotion.Kind {
	case enums.PromotionKindPercentage:
		discount := (input.SubtotalCents*promotion.ValueCents + 50) / 100
		if promotion.MaxDiscountCents != nil && discount > *promotion.MaxDiscountCents {
			discount = *promotion.MaxDiscountCents
		}
		if discount < 0 {
			discount = 0
		}
		return LineResult{DiscountCents: discount, Applied: promotion}, nil

	case enums.PromotionKindFixed:
		// Flat per line, independent of quantity.
		return LineResult{DiscountCents: promotion.ValueCents, Applied: promotion}, nil

	case enums.PromotionKindBuyXGetY:
		if promotion.BuyQuantity == nil || promotion.GetQuantity == nil {
			return LineResult{}, pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("promotion %s missing buy/get quantities", promotion.ID))
		}
		groupSize := *promotion.BuyQuantity + *promotion.GetQuantity
		if groupSize <= 0 {
			return LineResult{}, pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("promotion %s has non-positive buy/get quantities", promotion.ID))
		}
		freeItems := input.Quantity / groupSize * *promotion.GetQuantity
		if freeItems <= 0 {
			return LineResult{}, nil
		}
		return LineResult{
			DiscountCents: int64(freeItems) * input.UnitPriceCents,
			FreeItems:     freeItems,
			Applied:       promotion,
		}, nil

	case enums.PromotionKindBundle:
		return LineResult{}, nil

	default:
		return LineResult{}, pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("unhandled promotion kind %q", promotion.Kind))
	}
}

// EvaluateBundles runs the cart-level bundle pass. A bundle fires when every
// member product is in the cart with quantity >= 1, all members belong to one
// company, and the member prices sum above the bundle price.
func (s *service) EvaluateBundles(ctx context.Context, lines []BundleLine, cartSubtotalCents int64, zone string) ([]BundleResult, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	live, err := s.repo.ListLive(ctx, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load live promotions")
	}

	byProduct := make(map[uuid.UUID]BundleLine, len(lines))
	for _, line := range lines {
		byProduct[line.ProductID] = line
	}

	var results []BundleResult
	for i := range live {
		promotion := &live[i]
		if promotion.Kind != enums.PromotionKindBundle {
			continue
		}
		if !promotion.AppliesToZone(zone) {
			continue
		}
		if promotion.MinPurchaseCents != nil && cartSubtotalCents < *promotion.MinPurchaseCents {
			continue
		}
		if len(promotion.BundleProductIDs) < 2 {
			continue
		}

		var memberTotal int64
		var companyID uuid.UUID
		complete := true
		for idx, memberID := range promotion.BundleProductIDs {
			line, present := byProduct[memberID]
			if !present || line.Quantity < 1 {
				complete = false
				break
			}
			if idx == 0 {
				companyID = line.CompanyID
			} else if line.CompanyID != companyID {
				complete = false
				break
			}
			memberTotal += line.UnitPriceCents
		}
		if !complete {
			continue
		}

		discount := memberTotal - promotion.ValueCents
		if discount <= 0 {
			continue
		}
		results = append(results, BundleResult{
			Promotion:     promotion,
			CompanyID:     companyID,
			DiscountCents: discount,
		})
	}
	return results, nil
}

func containsProduct(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
