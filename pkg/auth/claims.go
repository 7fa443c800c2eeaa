package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

// OperatorTokenPayload is what tooling supplies when minting a token.
type OperatorTokenPayload struct {
	OperatorID uuid.UUID
	Role       enums.OperatorRole
	JTI        string
}

// OperatorClaims is the JWT body presented by station operators.
type OperatorClaims struct {
	OperatorID uuid.UUID          `json:"operator_id"`
	Role       enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks in jwt.Parser.
func (c OperatorClaims) Validate() error {
	if c.OperatorID == uuid.Nil {
		return ErrMissingOperator
	}
	if !c.Role.IsValid() {
		return ErrUnknownRole
	}
	if c.Subject != "" && c.Subject != c.OperatorID.String() {
		return ErrSubjectMismatch
	}
	return nil
}
