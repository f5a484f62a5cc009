package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/competition-engine/models"
)

// Claims is the payload of an operator token.
type Claims struct {
	UserID int             `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Valid checks expiry and rejects tokens without a known operator identity.
func (c Claims) Valid() error {
	if err := c.RegisteredClaims.Valid(); err != nil {
		return err
	}
	if c.UserID <= 0 {
		return fmt.Errorf("invalid user_id claim: %d", c.UserID)
	}
	switch c.Role {
	case models.RoleAdmin, models.RoleOrganizer, models.RoleViewer:
		return nil
	default:
		return fmt.Errorf("invalid role claim: %q", c.Role)
	}
}

// ClaimsFromContext returns the claims Authenticate stored for the request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(userContextKey).(*Claims)
	return claims, ok
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, errors.New("user claims not found in context")
	}
	return claims.UserID, nil
}
