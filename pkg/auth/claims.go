package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// AccessTokenPayload captures the data stamped into a JWT when one is minted
// (ops tooling and tests only; production tokens come from the identity
// service).
type AccessTokenPayload struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
	Zone      string
	JTI       string
}

// AccessTokenClaims is the typed JWT this backend verifies at the boundary.
// CompanyID scopes vendor operations; Zone drives delivery fees and
// promotion gating without a user lookup per request.
type AccessTokenClaims struct {
	UserID    uuid.UUID      `json:"user_id"`
	Role      enums.UserRole `json:"role"`
	CompanyID *uuid.UUID     `json:"company_id,omitempty"`
	Zone      string         `json:"zone,omitempty"`
	jwt.RegisteredClaims
}
