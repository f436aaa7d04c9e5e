package controllers

import (
	"net/http"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/catalog"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

// VendorListDeliveryZones returns the company's delivery fee table.
func VendorListDeliveryZones(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zones, err := svc.ListDeliveryZones(r.Context(), catalogActor(actor))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, zones)
	}
}

type deliveryZoneEntry struct {
	Zone     string `json:"zone" validate:"required,max=64"`
	FeeCents int64  `json:"feeCents" validate:"min=0"`
	MinDays  int    `json:"minDays" validate:"min=0"`
	MaxDays  int    `json:"maxDays" validate:"min=0"`
}

type upsertDeliveryZonesRequest struct {
	Zones []deliveryZoneEntry `json:"zones" validate:"required,min=1,dive"`
}

// VendorUpsertDeliveryZones replaces or inserts fee rows; zones are keyed by
// name per company.
func VendorUpsertDeliveryZones(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req upsertDeliveryZonesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated := make([]models.DeliveryZone, 0, len(req.Zones))
		for _, entry := range req.Zones {
			zone, upsertErr := svc.UpsertDeliveryZone(r.Context(), catalogActor(actor), catalog.UpsertDeliveryZoneInput{
				Zone:     entry.Zone,
				FeeCents: entry.FeeCents,
				MinDays:  entry.MinDays,
				MaxDays:  entry.MaxDays,
			})
			if upsertErr != nil {
				responses.WriteError(r.Context(), logg, w, upsertErr)
				return
			}
			updated = append(updated, *zone)
		}
		responses.WriteSuccess(w, updated)
	}
}
