package testutil

import (
	"net/http"
	"time"

	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
)

// WithPrincipal attaches an authenticated principal and role to the request
// context, simulating what the auth middleware does.
func WithPrincipal(req *http.Request, id domain.PrincipalID, role domain.Role) *http.Request {
	ctx := requestcontext.WithPrincipalID(req.Context(), id)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock, simulating the request
// time middleware.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
