package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/api/middleware"
	pkgerrors "github.com/vendorahq/vendora-backend/pkg/errors"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// actorClaims is the authenticated identity pulled from request context.
type actorClaims struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
	Zone      string
}

func actorFromRequest(r *http.Request) (actorClaims, error) {
	ctx := r.Context()

	rawUser := middleware.UserIDFromContext(ctx)
	if rawUser == "" {
		return actorClaims{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return actorClaims{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return actorClaims{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}

	claims := actorClaims{UserID: userID, Role: role, Zone: middleware.ZoneFromContext(ctx)}
	if rawCompany := middleware.CompanyIDFromContext(ctx); rawCompany != "" {
		companyID, parseErr := uuid.Parse(rawCompany)
		if parseErr != nil {
			return actorClaims{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, parseErr, "invalid company id")
		}
		claims.CompanyID = &companyID
	}
	return claims, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}
