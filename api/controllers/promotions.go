package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/promotions"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

func promotionsActor(claims actorClaims) promotions.Actor {
	return promotions.Actor{UserID: claims.UserID, Role: claims.Role}
}

type createPromotionRequest struct {
	Name             string      `json:"name" validate:"required,max=256"`
	Kind             string      `json:"kind" validate:"required"`
	ValueCents       int64       `json:"valueCents" validate:"min=0"`
	MinPurchaseCents *int64      `json:"minPurchaseCents"`
	MaxDiscountCents *int64      `json:"maxDiscountCents"`
	BuyQuantity      *int        `json:"buyQuantity"`
	GetQuantity      *int        `json:"getQuantity"`
	BundleProductIDs []uuid.UUID `json:"bundleProductIds"`
	ProductIDs       []uuid.UUID `json:"productIds"`
	Zones            []string    `json:"zones"`
	StartsAt         time.Time   `json:"startsAt" validate:"required"`
	EndsAt           time.Time   `json:"endsAt" validate:"required"`
}

// AdminCreatePromotion registers a new promotion.
func AdminCreatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createPromotionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePromotionKind(strings.TrimSpace(req.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promotion kind"))
			return
		}

		promotion, err := svc.CreatePromotion(r.Context(), promotionsActor(actor), promotions.CreatePromotionInput{
			Name:             req.Name,
			Kind:             kind,
			ValueCents:       req.ValueCents,
			MinPurchaseCents: req.MinPurchaseCents,
			MaxDiscountCents: req.MaxDiscountCents,
			BuyQuantity:      req.BuyQuantity,
			GetQuantity:      req.GetQuantity,
			BundleProductIDs: req.BundleProductIDs,
			ProductIDs:       req.ProductIDs,
			Zones:            req.Zones,
			StartsAt:         req.StartsAt,
			EndsAt:           req.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, promotion)
	}
}

// AdminListPromotions returns promotions filtered by kind.
func AdminListPromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPromotions(r.Context(), promotionsActor(actor), promotions.ListPromotionsParams{
			Kind:   strings.TrimSpace(r.URL.Query().Get("kind")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminGetPromotion returns one promotion by id.
func AdminGetPromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotionID, err := pathUUID(r, "promotionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotion, err := svc.GetPromotion(r.Context(), promotionsActor(actor), promotionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promotion)
	}
}

type updatePromotionRequest struct {
	Name             *string      `json:"name"`
	ValueCents       *int64       `json:"valueCents"`
	MinPurchaseCents *int64       `json:"minPurchaseCents"`
	MaxDiscountCents *int64       `json:"maxDiscountCents"`
	BuyQuantity      *int         `json:"buyQuantity"`
	GetQuantity      *int         `json:"getQuantity"`
	BundleProductIDs *[]uuid.UUID `json:"bundleProductIds"`
	ProductIDs       *[]uuid.UUID `json:"productIds"`
	Zones            *[]string    `json:"zones"`
	StartsAt         *time.Time   `json:"startsAt"`
	EndsAt           *time.Time   `json:"endsAt"`
}

// AdminUpdatePromotion applies partial updates; the kind is immutable.
func AdminUpdatePromotion(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotionID, err := pathUUID(r, "promotionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updatePromotionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotion, err := svc.UpdatePromotion(r.Context(), promotionsActor(actor), promotionID, promotions.UpdatePromotionInput{
			Name:             req.Name,
			ValueCents:       req.ValueCents,
			MinPurchaseCents: req.MinPurchaseCents,
			MaxDiscountCents: req.MaxDiscountCents,
			BuyQuantity:      req.BuyQuantity,
			GetQuantity:      req.GetQuantity,
			BundleProductIDs: req.BundleProductIDs,
			ProductIDs:       req.ProductIDs,
			Zones:            req.Zones,
			StartsAt:         req.StartsAt,
			EndsAt:           req.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promotion)
	}
}

// AdminSetPromotionActive flips whether a promotion participates in
// evaluation.
func AdminSetPromotionActive(svc promotions.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotionID, err := pathUUID(r, "promotionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promotion, err := svc.SetPromotionActive(r.Context(), promotionsActor(actor), promotionID, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promotion)
	}
}
