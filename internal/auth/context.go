package auth

import "context"

type contextKey struct{}

// Operator is the authenticated installer or facilities user behind an
// operator request.
type Operator struct {
	Name     string
	RemoteIP string
}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, contextKey{}, op)
}

func FromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(contextKey{}).(Operator)
	return op, ok
}

// OperatorName returns the operator's name, or "" outside operator routes.
func OperatorName(ctx context.Context) string {
	op, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return op.Name
}

func IsOperator(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}
