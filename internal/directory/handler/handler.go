// Package handler exposes the operational directory endpoints. They are
// gated by the shared admin token, not principal JWTs: registering
// principals is a provisioning concern, not a user-facing feature.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yabetsTesfaye/addiscares-backend/internal/directory"
	"github.com/yabetsTesfaye/addiscares-backend/internal/jwttoken"
	"github.com/yabetsTesfaye/addiscares-backend/internal/platform/middleware"
	"github.com/yabetsTesfaye/addiscares-backend/internal/transport/http/shared"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/domain"
	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/requestcontext"
	"github.com/yabetsTesfaye/addiscares-backend/pkg/platform/sentinel"
)

const tokenTTL = 24 * time.Hour

// Handler handles principal provisioning and token minting.
type Handler struct {
	logger     *slog.Logger
	store      directory.Store
	jwt        *jwttoken.JWTService
	adminToken string
}

func New(store directory.Store, jwt *jwttoken.JWTService, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		store:      store,
		jwt:        jwt,
		adminToken: adminToken,
	}
}

// Register registers the directory routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	dr := chi.NewRouter()
	dr.Use(middleware.Recovery(h.logger))
	dr.Use(middleware.RequestID)
	dr.Use(middleware.Logger(h.logger))
	dr.Use(middleware.Timeout(10 * time.Second))
	dr.Use(middleware.ContentTypeJSON)
	dr.Use(middleware.RequireAdminToken(h.adminToken, h.logger))

	dr.Post("/principals", h.handleRegister)
	dr.Post("/principals/{id}/token", h.handleMintToken)

	r.Mount("/admin", dr)
}

type registerRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type registerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Name == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name is required"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p := directory.Principal{
		ID:        domain.NewPrincipalID(),
		Name:      req.Name,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := h.store.Save(ctx, p); err != nil {
		h.logger.ErrorContext(ctx, "failed to save principal",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "directory unavailable"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:   p.ID.String(),
		Name: p.Name,
		Role: string(p.Role),
	})
}

type mintTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// handleMintToken issues an access token for a known principal. Kept behind
// the admin token because login flows are owned by the auth collaborator.
func (h *Handler) handleMintToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParsePrincipalID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p, err := h.store.FindByID(ctx, id)
	if err != nil {
		shared.WriteError(w, h.lookupErr(ctx, err))
		return
	}
	if !p.Active {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "principal is inactive"))
		return
	}

	token, err := h.jwt.GenerateAccessToken(p.ID, p.Role, tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to sign token",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to sign token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, mintTokenResponse{
		Token:     token,
		ExpiresIn: int64(tokenTTL.Seconds()),
	})
}

func (h *Handler) lookupErr(ctx context.Context, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "principal not found")
	}
	h.logger.ErrorContext(ctx, "directory lookup failed",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.New(dErrors.CodeUnavailable, "directory unavailable")
}
