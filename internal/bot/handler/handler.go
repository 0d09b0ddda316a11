// Package handler exposes the bot over HTTP for messaging-platform webhooks.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fusebot/internal/auth/models"
	"fusebot/internal/auth/service"
	"fusebot/internal/credentials"
	"fusebot/pkg/platform/httputil"
	"fusebot/pkg/platform/middleware/request"
)

// Dispatcher routes one message and answers status queries.
type Dispatcher interface {
	Handle(ctx context.Context, roomID, text string) *service.Reply
	Status(ctx context.Context, roomID string) *models.Session
}

// Registry lists the cooperative aliases members can authenticate against.
type Registry interface {
	Aliases() []string
}

type Handler struct {
	engine   Dispatcher
	registry Registry
	logger   *slog.Logger
}

func New(engine Dispatcher, registry Registry, logger *slog.Logger) *Handler {
	return &Handler{
		engine:   engine,
		registry: registry,
		logger:   logger,
	}
}

// Register mounts the bot routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/messages", h.handleMessage)
	r.Get("/v1/rooms/{roomID}/auth-status", h.handleAuthStatus)
	r.Get("/v1/cooperatives", h.handleCooperatives)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[MessageRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reply := h.engine.Handle(ctx, req.RoomID, req.Text)

	httputil.WriteJSON(w, http.StatusOK, MessageResponse{
		RoomID:    req.RoomID,
		Reply:     reply.Text,
		Status:    string(reply.Status),
		RequestID: requestID,
	})
}

func (h *Handler) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomID := chi.URLParam(r, "roomID")

	session := h.engine.Status(ctx, roomID)

	res := AuthStatusResponse{
		RoomID:           session.RoomID,
		Status:           string(session.Status),
		Cooperative:      session.Cooperative,
		PendingOperation: session.PostAuthAction,
	}
	if session.Credentials != nil {
		res.MaskedEmail = credentials.MaskEmail(session.Credentials.Email)
	}
	if !session.UpdatedAt.IsZero() {
		t := session.UpdatedAt
		res.UpdatedAt = &t
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCooperatives(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CooperativesResponse{
		Cooperatives: h.registry.Aliases(),
	})
}
