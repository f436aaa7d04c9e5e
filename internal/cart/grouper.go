package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/internal/promotions"
)

// Group partitions validated lines by vendor, prices each group with
// promotions and delivery terms, and aggregates the summary. The delivery
// estimate is only produced when requested (authenticated summaries).
func (s *service) Group(ctx context.Context, lines []ValidatedLine, zone string, withEstimate bool) ([]VendorGroup, Summary, *DeliveryEstimate, error) {
	if len(lines) == 0 {
		return []VendorGroup{}, Summary{}, nil, nil
	}

	companyOrder := []uuid.UUID{}
	byCompany := map[uuid.UUID][]GroupLine{}
	bundleLines := make([]promotions.BundleLine, 0, len(lines))
	var cartSubtotal int64

	for _, line := range lines {
		subtotal := line.UnitPriceCents * int64(line.Quantity)
		cartSubtotal += subtotal
		bundleLines = append(bundleLines, promotions.BundleLine{
			ProductID:      line.ProductID,
			CompanyID:      line.CompanyID,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
		if _, seen := byCompany[line.CompanyID]; !seen {
			companyOrder = append(companyOrder, line.CompanyID)
		}
		byCompany[line.CompanyID] = append(byCompany[line.CompanyID], GroupLine{
			ValidatedLine: line,
			SubtotalCents: subtotal,
		})
	}

	// Per-line promotions.
	for companyID, groupLines := range byCompany {
		for i := range groupLines {
			line := &groupLines[i]
			result, err := s.promos.Evaluate(ctx, promotions.LineInput{
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				SubtotalCents:  line.SubtotalCents,
				UnitPriceCents: line.UnitPriceCents,
				Zone:           zone,
			})
			if err != nil {
				return nil, Summary{}, nil, err
			}
			line.DiscountCents = result.DiscountCents
			line.FreeItems = result.FreeItems
			if result.Applied != nil {
				id := result.Applied.ID
				line.PromotionID = &id
			}
		}
		byCompany[companyID] = groupLines
	}

	// Cart-level bundle pass; discounts credit the owning vendor's group.
	bundleResults, err := s.promos.EvaluateBundles(ctx, bundleLines, cartSubtotal, zone)
	if err != nil {
		return nil, Summary{}, nil, err
	}
	bundleByCompany := map[uuid.UUID]int64{}
	for _, result := range bundleResults {
		bundleByCompany[result.CompanyID] += result.DiscountCents
	}

	companies, err := s.catalog.Companies(ctx, companyOrder)
	if err != nil {
		return nil, Summary{}, nil, err
	}

	groups := make([]VendorGroup, 0, len(companyOrder))
	summary := Summary{}
	minDays, maxDays := 0, 0
	for _, companyID := range companyOrder {
		groupLines := byCompany[companyID]
		group := VendorGroup{
			CompanyID: companyID,
			Lines:     groupLines,
		}
		if company, found := companies[companyID]; found {
			group.CompanyName = company.Name
		}
		for _, line := range groupLines {
			group.SubtotalCents += line.SubtotalCents
			group.DiscountCents += line.DiscountCents
			summary.TotalItems += line.Quantity
		}
		group.DiscountCents += bundleByCompany[companyID]

		terms, err := s.catalog.DeliveryTermsFor(ctx, companyID, zone)
		if err != nil {
			return nil, Summary{}, nil, err
		}
		group.DeliveryFeeCents = terms.FeeCents
		group.MinDays = terms.MinDays
		group.MaxDays = terms.MaxDays

		group.TotalCents = group.SubtotalCents - group.DiscountCents + group.DeliveryFeeCents
		if group.TotalCents < 0 {
			group.TotalCents = 0
		}

		if minDays == 0 || terms.MinDays < minDays {
			minDays = terms.MinDays
		}
		if terms.MaxDays > maxDays {
			maxDays = terms.MaxDays
		}

		summary.SubtotalCents += group.SubtotalCents
		summary.TotalDiscountCents += group.DiscountCents
		summary.TotalDeliveryFeeCents += group.DeliveryFeeCents
		summary.GrandTotalCents += group.TotalCents
		groups = append(groups, group)
	}

	var estimate *DeliveryEstimate
	if withEstimate && len(groups) > 0 {
		estimate = &DeliveryEstimate{
			MinDays:       minDays,
			MaxDays:       maxDays,
			EstimatedDate: time.Now().UTC().AddDate(0, 0, maxDays),
		}
	}
	return groups, summary, estimate, nil
}
