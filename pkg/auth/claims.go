package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

// ErrInvalidIdentity wraps every rejection of the identity carried by a token.
var ErrInvalidIdentity = errors.New("invalid token identity")

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    enums.ActorRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID       `json:"user_id"`
	StoreID *uuid.UUID      `json:"store_id,omitempty"`
	Role    enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt parser after the registered claims pass.
func (c AccessTokenClaims) Validate() error {
	return c.payload().validate()
}

func (c AccessTokenClaims) payload() AccessTokenPayload {
	return AccessTokenPayload{UserID: c.UserID, StoreID: c.StoreID, Role: c.Role, JTI: c.ID}
}

// Merchants act on behalf of a store; system identities are never minted for clients.
func (p AccessTokenPayload) validate() error {
	switch {
	case p.UserID == uuid.Nil:
		return fmt.Errorf("%w: user id is required", ErrInvalidIdentity)
	case !p.Role.IsValid():
		return fmt.Errorf("%w: unknown actor role %q", ErrInvalidIdentity, p.Role)
	case p.Role == enums.ActorRoleSystem:
		return fmt.Errorf("%w: system role cannot be issued to clients", ErrInvalidIdentity)
	case p.Role == enums.ActorRoleMerchant && (p.StoreID == nil || *p.StoreID == uuid.Nil):
		return fmt.Errorf("%w: merchant tokens require a store id", ErrInvalidIdentity)
	}
	return nil
}
