package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller as the handlers see it: the
// tenant whose ledgers and reports are in scope, the finance role the
// token grants, and the token subject recorded in audit entries.
type Identity struct {
	TenantID string
	Role     Role
	Subject  string
}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{
		TenantID: tenantID,
		Role:     role,
		Subject:  subject,
	})
}

// IdentityFromContext returns the stored identity, zero when the
// request never passed the middleware.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}

// TenantIDFromContext returns the caller's tenant, "" when absent.
// Repositories scope every query by this value.
func TenantIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).TenantID
}

// RoleFromContext returns the caller's finance role, "" when absent.
func RoleFromContext(ctx context.Context) Role {
	return IdentityFromContext(ctx).Role
}

// SubjectFromContext returns the token subject, "" when absent.
func SubjectFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).Subject
}
