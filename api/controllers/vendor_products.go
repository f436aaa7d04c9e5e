package controllers

import (
	"net/http"

	"github.com/vendorahq/vendora-backend/api/responses"
	"github.com/vendorahq/vendora-backend/api/validators"
	"github.com/vendorahq/vendora-backend/internal/catalog"
	"github.com/vendorahq/vendora-backend/pkg/logger"
)

func catalogActor(claims actorClaims) catalog.Actor {
	return catalog.Actor{UserID: claims.UserID, Role: claims.Role, CompanyID: claims.CompanyID}
}

type createProductRequest struct {
	SKU         string   `json:"sku" validate:"required,max=64"`
	Name        string   `json:"name" validate:"required,max=256"`
	Description *string  `json:"description"`
	PriceCents  int64    `json:"priceCents" validate:"required,min=1"`
	Stock       int      `json:"stock" validate:"min=0"`
	MinOrderQty int      `json:"minOrderQty" validate:"min=0"`
	MaxQty      *int     `json:"maxQty"`
	Zones       []string `json:"zones"`
}

// VendorCreateProduct lists a new product under the caller's company.
func VendorCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalogActor(actor), catalog.CreateProductInput{
			SKU:         req.SKU,
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Stock:       req.Stock,
			MinOrderQty: req.MinOrderQty,
			MaxQty:      req.MaxQty,
			Zones:       req.Zones,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// VendorListProducts returns the caller company's products, active or not.
func VendorListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listProductsParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListVendorProducts(r.Context(), catalogActor(actor), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// VendorGetProduct returns one product; company scoping lives in the service.
func VendorGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"priceCents"`
	MinOrderQty *int      `json:"minOrderQty"`
	MaxQty      *int      `json:"maxQty"`
	Zones       *[]string `json:"zones"`
}

// VendorUpdateProduct applies partial field updates to a listing.
func VendorUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), catalogActor(actor), productID, catalog.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			MinOrderQty: req.MinOrderQty,
			MaxQty:      req.MaxQty,
			Zones:       req.Zones,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type setStockRequest struct {
	Stock int `json:"stock" validate:"min=0"`
}

// VendorSetStock sets the absolute stock level for a listing.
func VendorSetStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetStock(r.Context(), catalogActor(actor), productID, req.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// VendorSetProductActive flips a listing's visibility.
func VendorSetProductActive(svc catalog.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetProductActive(r.Context(), catalogActor(actor), productID, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
