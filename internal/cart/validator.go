package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
)

// dedupeItems merges duplicate product ids, summing quantities, preserving
// first-seen order.
func dedupeItems(items []ItemInput) []ItemInput {
	index := make(map[uuid.UUID]int, len(items))
	out := make([]ItemInput, 0, len(items))
	for _, item := range items {
		if pos, seen := index[item.ProductID]; seen {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, item)
	}
	return out
}

// Validate checks the request cart against the live catalog. Hard errors make
// the cart invalid; clipping produces warnings and keeps the line.
func (s *service) Validate(ctx context.Context, items []ItemInput, zone string) (*ValidationResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}
	deduped := dedupeItems(items)
	for _, item := range deduped {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every line")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	ids := make([]uuid.UUID, 0, len(deduped))
	for _, item := range deduped {
		ids = append(ids, item.ProductID)
	}
	lines, err := s.catalog.Lines(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Errors:   []LineError{},
		Warnings: []LineWarning{},
		Lines:    []ValidatedLine{},
	}
	for _, item := range deduped {
		line, found := lines[item.ProductID]
		if !found || !line.IsActive {
			result.Errors = append(result.Errors, LineError{
				ProductID: item.ProductID,
				Type:      enums.CartLineErrorNotFoundOrInactive,
				Message:   "product not found or inactive",
			})
			continue
		}
		if line.Stock == 0 {
			result.Errors = append(result.Errors, LineError{
				ProductID: item.ProductID,
				Type:      enums.CartLineErrorOutOfStock,
				Message:   fmt.Sprintf("%s is out of stock", line.Name),
			})
			continue
		}
		if item.Quantity < line.MinOrderQty {
			result.Errors = append(result.Errors, LineError{
				ProductID: item.ProductID,
				Type:      enums.CartLineErrorBelowMinOrderQty,
				Message:   fmt.Sprintf("%s requires a minimum of %d", line.Name, line.MinOrderQty),
			})
			continue
		}

		quantity := item.Quantity
		if line.MaxQty != nil && quantity > *line.MaxQty {
			quantity = *line.MaxQty
			result.Warnings = append(result.Warnings, LineWarning{
				ProductID: item.ProductID,
				Type:      enums.CartLineWarningClippedToMaxQty,
				Message:   fmt.Sprintf("%s is limited to %d per order", line.Name, *line.MaxQty),
			})
		}
		if quantity > line.Stock {
			quantity = line.Stock
			result.Warnings = append(result.Warnings, LineWarning{
				ProductID: item.ProductID,
				Type:      enums.CartLineWarningClippedToStock,
				Message:   fmt.Sprintf("only %d of %s in stock", line.Stock, line.Name),
			})
		}

		result.Lines = append(result.Lines, ValidatedLine{
			ProductID:      line.ProductID,
			CompanyID:      line.CompanyID,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       quantity,
			MinOrderQty:    line.MinOrderQty,
		})
	}
	result.Valid = len(result.Errors) == 0
	return result, nil
}
