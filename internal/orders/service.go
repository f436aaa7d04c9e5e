package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbpkg "github.com/vendorahq/vendora-backend/pkg/db"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/outbox"
	"github.com/vendorahq/vendora-backend/pkg/outbox/payloads"
	"github.com/vendorahq/vendora-backend/pkg/pagination"
)

// cashToleranceCents is the allowed mismatch between the collected amount and
// the order total.
const cashToleranceCents = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the order status workflow, driver assignment, cash
// reconciliation, and order listings.
type Service interface {
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	BulkUpdateStatus(ctx context.Context, input BulkUpdateStatusInput) (*BulkUpdateResult, error)
	AssignDriver(ctx context.Context, input AssignDriverInput) (*models.Order, error)
	CollectCash(ctx context.Context, input CollectCashInput) (*models.CashCollection, error)

	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID, params ListOrdersParams) (*OrderList, error)
	ListVendorOrders(ctx context.Context, actor Actor, params ListOrdersParams) (*OrderList, error)
	ListCashCollections(ctx context.Context, actor Actor, params ListOrdersParams) (*CashCollectionList, error)

	CancelStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the orders service.
func NewService(repo *Repository, tx txRunner, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, logg: logg}, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.Status))
	}
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyMatch(input.Actor, order.CompanyID); err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now().UTC()
		updates := map[string]any{"status": input.Status}
		if column := statusTimestampColumn(input.Status); column != "" {
			updates[column] = now
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if input.EstimatedTime != nil {
			updates["estimated_time"] = *input.EstimatedTime
		}
		if input.Location != nil {
			updates["location"] = *input.Location
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      order.UserID,
				CompanyID:   order.CompanyID,
				FromStatus:  order.Status,
				ToStatus:    input.Status,
				Notes:       input.Notes,
				ChangedAt:   now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return s.loadOrder(ctx, order.ID)
}

// BulkUpdateStatus processes each order independently; one failure never rolls
// back its siblings. Failure reasons are combined for the log line only.
func (s *service) BulkUpdateStatus(ctx context.Context, input BulkUpdateStatusInput) (*BulkUpdateResult, error) {
	if len(input.OrderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}

	result := &BulkUpdateResult{}
	var combined error
	for _, orderID := range input.OrderIDs {
		_, err := s.UpdateStatus(ctx, UpdateStatusInput{
			OrderID: orderID,
			Status:  input.Status,
			Actor:   input.Actor,
		})
		if err != nil {
			result.Failed++
			combined = multierr.Append(combined, fmt.Errorf("order %s: %w", orderID, err))
			continue
		}
		result.Updated++
	}
	if combined != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"updated": result.Updated,
			"failed":  result.Failed,
			"errors":  combined.Error(),
		}), "bulk status update finished with failures")
	}
	return result, nil
}

// AssignDriver binds the driver and forces the order to ON_THE_WAY in one
// operation with a single driver_assigned event.
func (s *service) AssignDriver(ctx context.Context, input AssignDriverInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyMatch(input.Actor, order.CompanyID); err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPreparing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "driver can only be assigned while order is PREPARING")
	}

	driver, err := s.repo.FindUserByID(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	if driver.Role != enums.UserRoleDriver || !driver.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is not an active driver")
	}
	if driver.CompanyID == nil || *driver.CompanyID != order.CompanyID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver does not belong to the order's company")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now().UTC()
		updates := map[string]any{
			"driver_id":     driver.ID,
			"status":        enums.OrderStatusOnTheWay,
			"dispatched_at": now,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDriverAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.DriverAssignedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      order.UserID,
				CompanyID:   order.CompanyID,
				DriverID:    driver.ID,
				AssignedAt:  now,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign driver")
	}
	return s.loadOrder(ctx, order.ID)
}

func (s *service) CollectCash(ctx context.Context, input CollectCashInput) (*models.CashCollection, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := requireCompanyMatch(input.Actor, order.CompanyID); err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash can only be collected for DELIVERED orders")
	}
	if order.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not cash on delivery")
	}

	cents := input.Amount.Shift(2)
	if !cents.IsInteger() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount has more than two decimal places")
	}
	collectedCents := cents.IntPart()
	if collectedCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	diff := collectedCents - order.TotalCents
	if diff < -cashToleranceCents || diff > cashToleranceCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("collected amount differs from order total by more than %d minor unit", cashToleranceCents))
	}

	existing, err := s.repo.FindCashCollectionByOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check cash collection")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cash already collected for this order")
	}

	var collection *models.CashCollection
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now().UTC()
		created, err := repo.CreateCashCollection(ctx, &models.CashCollection{
			OrderID:     order.ID,
			AmountCents: collectedCents,
			CollectedBy: input.Actor.UserID,
			Notes:       input.Notes,
			CollectedAt: now,
		})
		if err != nil {
			return err
		}
		collection = created

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCashCollected,
			AggregateType: enums.AggregateCashCollection,
			AggregateID:   created.ID,
			Actor:         actorRef(input.Actor),
			Data: payloads.CashCollectedEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				CollectionID: created.ID,
				CompanyID:    order.CompanyID,
				AmountCents:  collectedCents,
				CollectedBy:  input.Actor.UserID,
				CollectedAt:  now,
			},
			Version: 1,
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_cash_collections_order") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cash already collected for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cash collection")
	}
	return collection, nil
}

// GetOrder returns the order when the actor owns it, belongs to its vendor, or
// is an admin.
func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || order.UserID == actor.UserID {
		return order, nil
	}
	if actor.CompanyID != nil && *actor.CompanyID == order.CompanyID {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to you")
}

func (s *service) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params ListOrdersParams) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.list(ctx, listOrdersParams{UserID: &userID}, params)
}

func (s *service) ListVendorOrders(ctx context.Context, actor Actor, params ListOrdersParams) (*OrderList, error) {
	if actor.CompanyID == nil || *actor.CompanyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "company context missing")
	}
	return s.list(ctx, listOrdersParams{CompanyID: actor.CompanyID}, params)
}

func (s *service) list(ctx context.Context, repoParams listOrdersParams, params ListOrdersParams) (*OrderList, error) {
	if params.Status != "" {
		status, err := enums.ParseOrderStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		repoParams.Status = &status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}
	repoParams.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, next, err := s.repo.listOrders(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &OrderList{Items: rows, Cursor: cursor}, nil
}

func (s *service) ListCashCollections(ctx context.Context, actor Actor, params ListOrdersParams) (*CashCollectionList, error) {
	if actor.CompanyID == nil || *actor.CompanyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "company context missing")
	}

	repoParams := listCashCollectionsParams{
		CompanyID: *actor.CompanyID,
		Limit:     pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}

	rows, next, err := s.repo.listCashCollections(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cash collections")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &CashCollectionList{Items: rows, Cursor: cursor}, nil
}

// CancelStalePending cancels PENDING orders older than the cutoff through the
// normal transition machinery. Per-order failures are combined and returned
// for the caller's log line; they never stop the sweep.
func (s *service) CancelStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale pending orders")
	}

	cancelled := 0
	var combined error
	notes := "cancelled automatically after pending timeout"
	for _, order := range stale {
		_, err := s.UpdateStatus(ctx, UpdateStatusInput{
			OrderID: order.ID,
			Status:  enums.OrderStatusCancelled,
			Notes:   &notes,
			Actor:   Actor{Role: enums.UserRoleAdmin},
		})
		if err != nil {
			combined = multierr.Append(combined, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		cancelled++
	}
	return cancelled, combined
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func requireCompanyMatch(actor Actor, companyID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.CompanyID == nil || *actor.CompanyID != companyID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to company")
	}
	return nil
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}
