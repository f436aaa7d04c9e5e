package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/internal/checkout"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID     *uuid.UUID       `json:"addressId"`
	Items         []cart.ItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod *string          `json:"paymentMethod"`
	Notes         *string          `json:"notes"`
}

// Checkout places one order per vendor group from the submitted cart.
// Partial success is a success: failed groups come back in the failures list.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.CheckoutInput{
			UserID:    actor.UserID,
			AddressID: req.AddressID,
			Items:     req.Items,
			Notes:     req.Notes,
		}
		if req.PaymentMethod != nil {
			method, parseErr := enums.ParsePaymentMethod(strings.TrimSpace(*req.PaymentMethod))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment method"))
				return
			}
			input.PaymentMethod = &method
		}

		result, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
