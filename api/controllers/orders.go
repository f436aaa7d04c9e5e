package controllers

import (
	"net/http"
	"strings"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/orders"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

func listOrdersParams(r *http.Request) (orders.ListOrdersParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return orders.ListOrdersParams{}, err
	}
	return orders.ListOrdersParams{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// ListMyOrders returns the caller's orders, newest first.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListBuyerOrders(r.Context(), actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns one order. The service decides whether the caller may see
// it: the buyer, the owning vendor, or an admin.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.GetOrder(r.Context(), orders.Actor{
			UserID:    actor.UserID,
			Role:      actor.Role,
			CompanyID: actor.CompanyID,
		}, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
