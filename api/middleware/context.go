package middleware

import (
	"context"

	"github.com/sajith213/fuelstation-backend/pkg/enums"
)

type operatorKey struct{}

// Operator is the authenticated caller attached by Auth.
type Operator struct {
	ID   string
	Role enums.OperatorRole
}

// WithOperator stores the operator identity on ctx.
func WithOperator(ctx context.Context, operatorID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operatorKey{}, Operator{ID: operatorID, Role: enums.OperatorRole(role)})
}

// OperatorFromContext reports the operator set by Auth, if any.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	if ctx == nil {
		return Operator{}, false
	}
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

func OperatorIDFromContext(ctx context.Context) string {
	op, _ := OperatorFromContext(ctx)
	return op.ID
}

func RoleFromContext(ctx context.Context) string {
	op, _ := OperatorFromContext(ctx)
	return string(op.Role)
}
