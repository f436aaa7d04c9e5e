package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/orders"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

func ordersActor(claims actorClaims) orders.Actor {
	return orders.Actor{UserID: claims.UserID, Role: claims.Role, CompanyID: claims.CompanyID}
}

// VendorListOrders returns the caller company's orders.
func VendorListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listOrdersParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListVendorOrders(r.Context(), ordersActor(actor), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type updateOrderStatusRequest struct {
	Status        string  `json:"status" validate:"required"`
	Notes         *string `json:"notes"`
	EstimatedTime *string `json:"estimatedTime"`
	Location      *string `json:"location"`
}

// VendorUpdateOrderStatus moves one order through the workflow.
func VendorUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:       orderID,
			Status:        status,
			Notes:         req.Notes,
			EstimatedTime: req.EstimatedTime,
			Location:      req.Location,
			Actor:         ordersActor(actor),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type bulkOrderStatusRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1"`
	Status   string      `json:"status" validate:"required"`
}

// VendorBulkUpdateStatus applies one transition to many orders; each order
// succeeds or fails on its own.
func VendorBulkUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req bulkOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		result, err := svc.BulkUpdateStatus(r.Context(), orders.BulkUpdateStatusInput{
			OrderIDs: req.OrderIDs,
			Status:   status,
			Actor:    ordersActor(actor),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type assignDriverRequest struct {
	DriverID uuid.UUID `json:"driverId" validate:"required"`
}

// VendorAssignDriver binds a driver to a PREPARING order and dispatches it.
func VendorAssignDriver(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignDriverRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AssignDriver(r.Context(), orders.AssignDriverInput{
			OrderID:  orderID,
			DriverID: req.DriverID,
			Actor:    ordersActor(actor),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type collectCashRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Notes  *string         `json:"notes"`
}

// VendorCollectCash records the cash handover for a delivered COD order.
func VendorCollectCash(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req collectCashRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		collection, err := svc.CollectCash(r.Context(), orders.CollectCashInput{
			OrderID: orderID,
			Amount:  req.Amount,
			Notes:   req.Notes,
			Actor:   ordersActor(actor),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, collection)
	}
}

// VendorListCashCollections returns the company's cash collection records.
func VendorListCashCollections(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listOrdersParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCashCollections(r.Context(), ordersActor(actor), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
