package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/internal/catalog"
	"github.com/vendorahq/vendora-backend/internal/orders"
	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/outbox"
	"github.com/vendorahq/vendora-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quoter interface {
	Quote(ctx context.Context, items []cart.ItemInput, zone string, withEstimate bool) (*cart.QuoteResult, error)
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service converts a priced cart into per-vendor orders.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	tx          txRunner
	quotes      quoter
	catalogRepo *catalog.Repository
	ordersRepo  *orders.Repository
	outbox      outboxPublisher
	logg        *logger.Logger
	cfg         config.OrdersConfig
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	quotes quoter,
	catalogRepo *catalog.Repository,
	ordersRepo *orders.Repository,
	publisher outboxPublisher,
	logg *logger.Logger,
	cfg config.OrdersConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("cart quoter required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          tx,
		quotes:      quotes,
		catalogRepo: catalogRepo,
		ordersRepo:  ordersRepo,
		outbox:      publisher,
		logg:        logg,
		cfg:         cfg,
	}, nil
}

// Checkout re-validates and re-prices the cart, then places one order per
// vendor group. Each group runs in its own transaction so a sold-out vendor
// never takes its siblings down with it.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	method := enums.PaymentMethodCashOnDelivery
	if input.PaymentMethod != nil {
		if !input.PaymentMethod.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown payment method %q", *input.PaymentMethod))
		}
		method = *input.PaymentMethod
	}

	zone, err := s.resolveZone(ctx, input)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.Quote(ctx, input.Items, zone, false)
	if err != nil {
		return nil, err
	}
	if !quote.Validation.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart failed validation").
			WithDetails(quote.Validation.Errors)
	}

	result := &CheckoutResult{
		Orders:   []*models.Order{},
		Failures: []GroupFailure{},
	}
	for _, group := range quote.Groups {
		order, err := s.placeGroupOrder(ctx, input, method, group)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"company_id": group.CompanyID.String(),
				"user_id":    input.UserID.String(),
				"error":      err.Error(),
			}), "vendor group failed during checkout")
			result.Failures = append(result.Failures, GroupFailure{
				CompanyID: group.CompanyID,
				Reason:    failureReason(err),
			})
			continue
		}
		result.Orders = append(result.Orders, order)
	}
	result.OrderCount = len(result.Orders)

	if result.OrderCount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "no vendor group could be fulfilled").
			WithDetails(result.Failures)
	}
	return result, nil
}

// resolveZone picks the delivery zone: the address wins when one is given and
// belongs to the requester, otherwise the user's own zone applies.
func (s *service) resolveZone(ctx context.Context, input CheckoutInput) (string, error) {
	if input.AddressID != nil {
		address, err := s.catalogRepo.FindAddressByID(ctx, *input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}
		if address.UserID != input.UserID {
			return "", pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to the requester")
		}
		return address.Zone, nil
	}

	user, err := s.catalogRepo.FindUserByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user.Zone, nil
}

func (s *service) placeGroupOrder(ctx context.Context, input CheckoutInput, method enums.PaymentMethod, group cart.VendorGroup) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalogRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		// Guarded decrements first: the whole group rolls back when any
		// line lost its stock since the quote.
		for _, line := range group.Lines {
			ok, err := catalogRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %q", line.Name))
			}
		}

		items := make([]models.OrderItem, 0, len(group.Lines))
		for _, line := range group.Lines {
			items = append(items, models.OrderItem{
				ProductID:      line.ProductID,
				Name:           line.Name,
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
				FreeItems:      line.FreeItems,
				DiscountCents:  line.DiscountCents,
				TotalCents:     lineTotal(line),
			})
		}

		order, err := ordersRepo.CreateOrder(ctx, &models.Order{
			OrderNumber:      s.nextOrderNumber(),
			UserID:           input.UserID,
			CompanyID:        group.CompanyID,
			AddressID:        input.AddressID,
			Status:           enums.OrderStatusPending,
			PaymentMethod:    method,
			SubtotalCents:    group.SubtotalCents,
			DiscountCents:    group.DiscountCents,
			DeliveryFeeCents: group.DeliveryFeeCents,
			TotalCents:       group.TotalCents,
			Notes:            input.Notes,
			Items:            items,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		created = order

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data: payloads.OrderCreatedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				UserID:           order.UserID,
				CompanyID:        order.CompanyID,
				PaymentMethod:    order.PaymentMethod,
				SubtotalCents:    order.SubtotalCents,
				DiscountCents:    order.DiscountCents,
				DeliveryFeeCents: order.DeliveryFeeCents,
				TotalCents:       order.TotalCents,
				ItemCount:        len(order.Items),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) nextOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", s.cfg.NumberPrefix, time.Now().UTC().Format("20060102"), suffix)
}

func lineTotal(line cart.GroupLine) int64 {
	total := line.SubtotalCents - line.DiscountCents
	if total < 0 {
		total = 0
	}
	return total
}

// failureReason keeps the per-group failure message client-safe: typed domain
// errors surface their message, anything else collapses to a generic reason.
func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
		return typed.Message()
	}
	return "order could not be placed"
}
