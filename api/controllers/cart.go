package controllers

import (
	"net/http"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

type cartItemsRequest struct {
	Items []cart.ItemInput `json:"items" validate:"required,min=1,dive"`
}

type cartValidateResponse struct {
	Valid    bool               `json:"valid"`
	Errors   []cart.LineError   `json:"errors"`
	Warnings []cart.LineWarning `json:"warnings"`
	Summary  cart.Summary       `json:"summary"`
}

// CartValidate checks a request cart against the live catalog. The endpoint
// is public, so only zone-unrestricted promotions apply and no delivery fees
// are quoted.
func CartValidate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), req.Items, "", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartValidateResponse{
			Valid:    quote.Validation.Valid,
			Errors:   quote.Validation.Errors,
			Warnings: quote.Validation.Warnings,
			Summary:  quote.Summary,
		})
	}
}

// CartSummary prices the cart for the caller's zone: vendor groups, promotion
// discounts, delivery fees, and the cart-wide delivery estimate.
func CartSummary(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cartItemsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), req.Items, actor.Zone, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CartSave replaces the caller's saved cart with the supplied lines.
func CartSave(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cartItemsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.SaveCart(r.Context(), actor.UserID, req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartFetch returns the caller's saved cart.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetCart(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// CartClear drops the caller's saved cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ClearCart(r.Context(), actor.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
