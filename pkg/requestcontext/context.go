// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets these values; services and stores only ever read them.
// Keeping the package free of net/http lets domain code import it without
// pulling transport concerns along. The request ID in particular is the
// correlation id for logs and lifecycle events: it is minted once per
// request by middleware and passed down explicitly, never generated inside
// store methods.
package requestcontext

import (
	"context"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	principalIDKey struct{}
	roleKey        struct{}
	requestIDKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyPrincipalID = principalIDKey{}
	ContextKeyRole        = roleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// PrincipalID retrieves the authenticated principal from the context.
// Returns the zero value if not set.
func PrincipalID(ctx context.Context) domain.PrincipalID {
	if id, ok := ctx.Value(ContextKeyPrincipalID).(domain.PrincipalID); ok {
		return id
	}
	return domain.PrincipalID{}
}

// WithPrincipalID injects a principal ID into the context.
func WithPrincipalID(ctx context.Context, id domain.PrincipalID) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipalID, id)
}

// Role retrieves the authenticated principal's role from the context.
// Returns the empty role if not set.
func Role(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(ContextKeyRole).(domain.Role); ok {
		return r
	}
	return ""
}

// WithRole injects a role into the context.
func WithRole(ctx context.Context, r domain.Role) context.Context {
	return context.WithValue(ctx, ContextKeyRole, r)
}

// RequestID retrieves the correlation id from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the parsed User-Agent description from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// Now retrieves the request-scoped time from the context. Falls back to
// time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context so every mutation within
// one request observes the same "now".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
