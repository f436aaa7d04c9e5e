package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/internal/catalog"
	"github.com/vendorahq/vendora-backend/internal/promotions"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
)

type fakeCatalog struct {
	lines     map[uuid.UUID]catalog.Line
	companies map[uuid.UUID]catalog.CompanySummary
	terms     map[uuid.UUID]catalog.DeliveryTerms
}

func (f *fakeCatalog) Lines(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Line, error) {
	out := map[uuid.UUID]catalog.Line{}
	for _, id := range ids {
		if line, found := f.lines[id]; found {
			out[id] = line
		}
	}
	return out, nil
}

func (f *fakeCatalog) Companies(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.CompanySummary, error) {
	out := map[uuid.UUID]catalog.CompanySummary{}
	for _, id := range ids {
		if company, found := f.companies[id]; found {
			out[id] = company
		}
	}
	return out, nil
}

func (f *fakeCatalog) DeliveryTermsFor(_ context.Context, companyID uuid.UUID, _ string) (catalog.DeliveryTerms, error) {
	if terms, found := f.terms[companyID]; found {
		return terms, nil
	}
	return catalog.DeliveryTerms{MinDays: 1, MaxDays: 3}, nil
}

type fakePromos struct {
	evaluate        func(ctx context.Context, input promotions.LineInput) (promotions.LineResult, error)
	evaluateBundles func(ctx context.Context, lines []promotions.BundleLine, cartSubtotalCents int64, zone string) ([]promotions.BundleResult, error)
}

func (f *fakePromos) Evaluate(ctx context.Context, input promotions.LineInput) (promotions.LineResult, error) {
	if f.evaluate == nil {
		return promotions.LineResult{}, nil
	}
	return f.evaluate(ctx, input)
}

func (f *fakePromos) EvaluateBundles(ctx context.Context, lines []promotions.BundleLine, cartSubtotalCents int64, zone string) ([]promotions.BundleResult, error) {
	if f.evaluateBundles == nil {
		return nil, nil
	}
	return f.evaluateBundles(ctx, lines, cartSubtotalCents, zone)
}

type fakeTxRunner struct {
	db *gorm.DB
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(f.db)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range []string{
		`CREATE TABLE cart_records (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func newCartService(t *testing.T, cat *fakeCatalog, promos *fakePromos) Service {
	t.Helper()
	conn := setupCartTestDB(t)
	if cat == nil {
		cat = &fakeCatalog{}
	}
	if promos == nil {
		promos = &fakePromos{}
	}
	svc, err := NewService(NewRepository(conn), &fakeTxRunner{db: conn}, cat, promos)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func activeLine(companyID uuid.UUID, priceCents int64, stock int) catalog.Line {
	return catalog.Line{
		ProductID:      uuid.New(),
		CompanyID:      companyID,
		Name:           "Widget",
		UnitPriceCents: priceCents,
		Stock:          stock,
		MinOrderQty:    1,
		IsActive:       true,
	}
}

func TestValidateReportsHardErrors(t *testing.T) {
	companyID := uuid.New()
	inactive := activeLine(companyID, 1000, 5)
	inactive.IsActive = false
	outOfStock := activeLine(companyID, 1000, 0)
	minFive := activeLine(companyID, 1000, 50)
	minFive.MinOrderQty = 5

	cat := &fakeCatalog{lines: map[uuid.UUID]catalog.Line{
		inactive.ProductID:   inactive,
		outOfStock.ProductID: outOfStock,
		minFive.ProductID:    minFive,
	}}
	svc := newCartService(t, cat, nil)

	missing := uuid.New()
	result, err := svc.Validate(context.Background(), []ItemInput{
		{ProductID: missing, Quantity: 1},
		{ProductID: inactive.ProductID, Quantity: 1},
		{ProductID: outOfStock.ProductID, Quantity: 1},
		{ProductID: minFive.ProductID, Quantity: 2},
	}, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid cart")
	}
	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %+v", len(result.Errors), result.Errors)
	}
	types := map[enums.CartLineErrorType]int{}
	for _, lineErr := range result.Errors {
		types[lineErr.Type]++
	}
	if types[enums.CartLineErrorNotFoundOrInactive] != 2 {
		t.Fatalf("expected two not-found-or-inactive errors, got %d", types[enums.CartLineErrorNotFoundOrInactive])
	}
	if types[enums.CartLineErrorOutOfStock] != 1 || types[enums.CartLineErrorBelowMinOrderQty] != 1 {
		t.Fatalf("unexpected error mix: %+v", types)
	}
}

func TestValidateClipsWithWarnings(t *testing.T) {
	companyID := uuid.New()
	lowStock := activeLine(companyID, 1000, 3)
	capped := activeLine(companyID, 1000, 50)
	maxTen := 10
	capped.MaxQty = &maxTen

	cat := &fakeCatalog{lines: map[uuid.UUID]catalog.Line{
		lowStock.ProductID: lowStock,
		capped.ProductID:   capped,
	}}
	svc := newCartService(t, cat, nil)

	result, err := svc.Validate(context.Background(), []ItemInput{
		{ProductID: lowStock.ProductID, Quantity: 9},
		{ProductID: capped.ProductID, Quantity: 25},
	}, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("clipping must not invalidate the cart: %+v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", result.Warnings)
	}
	quantities := map[uuid.UUID]int{}
	for _, line := range result.Lines {
		quantities[line.ProductID] = line.Quantity
	}
	if quantities[lowStock.ProductID] != 3 {
		t.Fatalf("expected clip to stock 3, got %d", quantities[lowStock.ProductID])
	}
	if quantities[capped.ProductID] != 10 {
		t.Fatalf("expected clip to max qty 10, got %d", quantities[capped.ProductID])
	}
}

func TestValidateDeduplicatesLines(t *testing.T) {
	companyID := uuid.New()
	line := activeLine(companyID, 1000, 50)
	cat := &fakeCatalog{lines: map[uuid.UUID]catalog.Line{line.ProductID: line}}
	svc := newCartService(t, cat, nil)

	result, err := svc.Validate(context.Background(), []ItemInput{
		{ProductID: line.ProductID, Quantity: 2},
		{ProductID: line.ProductID, Quantity: 3},
	}, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0].Quantity != 5 {
		t.Fatalf("expected one merged line of 5, got %+v", result.Lines)
	}
}

func TestQuoteSingleVendorWorkedExample(t *testing.T) {
	companyID := uuid.New()
	line := activeLine(companyID, 1000, 5)
	cat := &fakeCatalog{
		lines:     map[uuid.UUID]catalog.Line{line.ProductID: line},
		companies: map[uuid.UUID]catalog.CompanySummary{companyID: {ID: companyID, Name: "Vendor One"}},
		terms:     map[uuid.UUID]catalog.DeliveryTerms{companyID: {FeeCents: 500, MinDays: 1, MaxDays: 3}},
	}
	svc := newCartService(t, cat, nil)

	quote, err := svc.Quote(context.Background(), []ItemInput{{ProductID: line.ProductID, Quantity: 3}}, "north", false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(quote.Groups) != 1 {
		t.Fatalf("expected one vendor group, got %d", len(quote.Groups))
	}
	group := quote.Groups[0]
	if group.SubtotalCents != 3000 || group.DiscountCents != 0 || group.TotalCents != 3500 {
		t.Fatalf("unexpected group totals %+v", group)
	}
	if group.CompanyName != "Vendor One" {
		t.Fatalf("unexpected company name %q", group.CompanyName)
	}
	if quote.Summary.GrandTotalCents != 3500 || quote.Summary.TotalItems != 3 {
		t.Fatalf("unexpected summary %+v", quote.Summary)
	}
	if quote.Estimate != nil {
		t.Fatal("estimate must be omitted unless requested")
	}
}

func TestQuotePartitionsByVendor(t *testing.T) {
	companyA := uuid.New()
	companyB := uuid.New()
	lineA := activeLine(companyA, 1000, 10)
	lineB := activeLine(companyB, 2000, 10)
	cat := &fakeCatalog{
		lines: map[uuid.UUID]catalog.Line{lineA.ProductID: lineA, lineB.ProductID: lineB},
		terms: map[uuid.UUID]catalog.DeliveryTerms{
			companyA: {FeeCents: 100, MinDays: 1, MaxDays: 2},
			companyB: {FeeCents: 200, MinDays: 2, MaxDays: 5},
		},
	}
	svc := newCartService(t, cat, nil)

	quote, err := svc.Quote(context.Background(), []ItemInput{
		{ProductID: lineA.ProductID, Quantity: 2},
		{ProductID: lineB.ProductID, Quantity: 1},
	}, "north", true)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if len(quote.Groups) != 2 {
		t.Fatalf("expected two vendor groups, got %d", len(quote.Groups))
	}
	var groupSubtotals int64
	for _, group := range quote.Groups {
		groupSubtotals += group.SubtotalCents
	}
	if groupSubtotals != quote.Summary.SubtotalCents {
		t.Fatalf("group subtotals %d must equal cart subtotal %d", groupSubtotals, quote.Summary.SubtotalCents)
	}
	if quote.Summary.TotalDeliveryFeeCents != 300 {
		t.Fatalf("expected combined delivery fee 300, got %d", quote.Summary.TotalDeliveryFeeCents)
	}
	if quote.Estimate == nil || quote.Estimate.MinDays != 1 || quote.Estimate.MaxDays != 5 {
		t.Fatalf("unexpected estimate %+v", quote.Estimate)
	}
}

func TestQuoteAppliesPromotionsAndBundles(t *testing.T) {
	companyID := uuid.New()
	lineB := activeLine(companyID, 500, 20)
	lineC := activeLine(companyID, 800, 20)
	cat := &fakeCatalog{
		lines: map[uuid.UUID]catalog.Line{lineB.ProductID: lineB, lineC.ProductID: lineC},
		terms: map[uuid.UUID]catalog.DeliveryTerms{companyID: {FeeCents: 0, MinDays: 1, MaxDays: 3}},
	}
	promos := &fakePromos{
		evaluate: func(_ context.Context, input promotions.LineInput) (promotions.LineResult, error) {
			// buy-2-get-1 on B: qty 6 -> 2 free.
			if input.ProductID == lineB.ProductID {
				return promotions.LineResult{DiscountCents: 1000, FreeItems: 2}, nil
			}
			return promotions.LineResult{}, nil
		},
		evaluateBundles: func(_ context.Context, _ []promotions.BundleLine, _ int64, _ string) ([]promotions.BundleResult, error) {
			return []promotions.BundleResult{{CompanyID: companyID, DiscountCents: 150}}, nil
		},
	}
	svc := newCartService(t, cat, promos)

	quote, err := svc.Quote(context.Background(), []ItemInput{
		{ProductID: lineB.ProductID, Quantity: 6},
		{ProductID: lineC.ProductID, Quantity: 1},
	}, "north", false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	group := quote.Groups[0]
	// 6*500 + 800 = 3800 subtotal; 1000 line discount + 150 bundle.
	if group.SubtotalCents != 3800 || group.DiscountCents != 1150 {
		t.Fatalf("unexpected group pricing %+v", group)
	}
	if group.TotalCents != 2650 {
		t.Fatalf("expected payable 2650, got %d", group.TotalCents)
	}
	var freeItems int
	for _, line := range group.Lines {
		freeItems += line.FreeItems
	}
	if freeItems != 2 {
		t.Fatalf("expected 2 free items, got %d", freeItems)
	}
}

func TestQuoteFloorsGroupTotalAtZero(t *testing.T) {
	companyID := uuid.New()
	line := activeLine(companyID, 100, 10)
	cat := &fakeCatalog{
		lines: map[uuid.UUID]catalog.Line{line.ProductID: line},
		terms: map[uuid.UUID]catalog.DeliveryTerms{companyID: {FeeCents: 0, MinDays: 1, MaxDays: 1}},
	}
	promos := &fakePromos{
		evaluate: func(_ context.Context, _ promotions.LineInput) (promotions.LineResult, error) {
			return promotions.LineResult{DiscountCents: 5000}, nil
		},
	}
	svc := newCartService(t, cat, promos)

	quote, err := svc.Quote(context.Background(), []ItemInput{{ProductID: line.ProductID, Quantity: 1}}, "", false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Groups[0].TotalCents != 0 {
		t.Fatalf("expected floored total 0, got %d", quote.Groups[0].TotalCents)
	}
}

func TestQuoteInvalidCartSkipsPricing(t *testing.T) {
	svc := newCartService(t, &fakeCatalog{}, nil)

	quote, err := svc.Quote(context.Background(), []ItemInput{{ProductID: uuid.New(), Quantity: 1}}, "", false)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Validation.Valid {
		t.Fatal("expected invalid validation")
	}
	if len(quote.Groups) != 0 {
		t.Fatalf("invalid carts are never priced, got %d groups", len(quote.Groups))
	}
}

func TestSavedCartLifecycle(t *testing.T) {
	svc := newCartService(t, nil, nil)
	ctx := context.Background()
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	saved, err := svc.SaveCart(ctx, userID, []ItemInput{
		{ProductID: productA, Quantity: 2},
		{ProductID: productB, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("save cart: %v", err)
	}
	if len(saved.Items) != 2 {
		t.Fatalf("expected 2 saved items, got %d", len(saved.Items))
	}

	// Saving again replaces, never appends.
	saved, err = svc.SaveCart(ctx, userID, []ItemInput{{ProductID: productA, Quantity: 5}})
	if err != nil {
		t.Fatalf("resave cart: %v", err)
	}
	if len(saved.Items) != 1 || saved.Items[0].Quantity != 5 {
		t.Fatalf("expected replaced cart with one line of 5, got %+v", saved.Items)
	}

	loaded, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if loaded.ID != saved.ID {
		t.Fatal("expected the same cart record")
	}

	if err := svc.ClearCart(ctx, userID); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	_, err = svc.GetCart(ctx, userID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after clear, got %v", err)
	}
}
