// Package api exposes the conversation agent over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mesabot/mesa"
	"github.com/mesabot/mesa/agent"
	mesajson "github.com/mesabot/mesa/json"
)

// Handler handles HTTP requests.
type Handler struct {
	runner *agent.Runner
	logger zerolog.Logger
}

// NewHandler creates a new handler around the turn runner.
func NewHandler(runner *agent.Runner, logger zerolog.Logger) *Handler {
	return &Handler{runner: runner, logger: logger}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/conversations/:conversation_id/messages", h.PostMessage)
	e.GET("/v1/conversations/:conversation_id/messages", h.GetMessages)
	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

type postMessageRequest struct {
	Message           string `json:"message"`
	RestaurantContext string `json:"restaurant_context,omitempty"`
}

type postMessageResponse struct {
	Reply         string `json:"reply"`
	Booked        bool   `json:"booked"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// PostMessage runs one dialogue turn and returns the assistant's reply.
// POST /v1/conversations/:conversation_id/messages
func (h *Handler) PostMessage(c echo.Context) error {
	ctx := c.Request().Context()
	conversationID := c.Param("conversation_id")

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	reply, err := h.runner.Message(ctx, conversationID, req.RestaurantContext, req.Message)
	if err != nil {
		if errors.Is(err, mesa.ErrValidation) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		h.logger.Error().Err(err).Str("conversation", conversationID).Msg("turn failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
	}

	sess, err := h.runner.Session(ctx, conversationID)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to reload session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
	}

	return c.JSON(http.StatusOK, postMessageResponse{
		Reply:         reply,
		Booked:        sess.Booked,
		ReservationID: sess.ReservationID,
	})
}

// GetMessages returns the retained transcript for a conversation.
// GET /v1/conversations/:conversation_id/messages
func (h *Handler) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	conversationID := c.Param("conversation_id")

	sess, err := h.runner.Session(ctx, conversationID)
	if err != nil {
		if errors.Is(err, mesa.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
		}
		h.logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to load session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load conversation"})
	}

	transcript, err := mesajson.MarshalEvents(sess.Messages)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to encode transcript")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load conversation"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": json.RawMessage(transcript),
		"summary":  sess.Summary,
		"booked":   sess.Booked,
	})
}
