package wsocket

import (
	"encoding/json"
	"net/http"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/models"
	"pressroom_ai_go_backend/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler owns the WebSocket endpoint: it upgrades connections, reads
// client frames and dispatches them to the chat service.
type Handler struct {
	chatService *services.ChatStreamService
	registry    *Registry
	upgrader    websocket.Upgrader
	cfg         *config.Config
	log         zerolog.Logger
}

// Frame is the client-to-server message envelope.
type Frame struct {
	Action              string           `json:"action"`
	Message             string           `json:"message"`
	EngineType          string           `json:"engineType"`
	ConversationID      string           `json:"conversationId"`
	UserID              string           `json:"userId"`
	UserRole            string           `json:"userRole"`
	UserPlan            string           `json:"userPlan"`
	ConversationHistory []models.Message `json:"conversationHistory"`
}

// NewHandler creates a new Handler
func NewHandler(chatService *services.ChatStreamService, registry *Registry, upgrader websocket.Upgrader, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		registry:    registry,
		upgrader:    upgrader,
		cfg:         cfg,
		log:         log,
	}
}

// HandleWebSocket serves one client connection for its lifetime. Frames are
// processed sequentially in arrival order; a malformed frame gets an error
// reply and the loop continues.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connectionID := uuid.NewString()
	h.registry.Add(connectionID, conn)
	defer h.registry.Remove(connectionID)
	h.log.Info().Str("connectionId", connectionID).Msg("websocket connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.log.Info().Str("connectionId", connectionID).Err(err).Msg("websocket closed")
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(connectionID, "Invalid message format")
			continue
		}

		switch frame.Action {
		case "sendMessage":
			h.handleSendMessage(r, connectionID, frame)
		case "clearHistory":
			h.handleClearHistory(connectionID, frame)
		default:
			h.sendError(connectionID, "Unknown action: "+frame.Action)
		}
	}
}

func (h *Handler) handleSendMessage(r *http.Request, connectionID string, frame Frame) {
	req := services.TurnRequest{
		ConnectionID:   connectionID,
		UserMessage:    frame.Message,
		EngineType:     frame.EngineType,
		ConversationID: frame.ConversationID,
		UserID:         frame.UserID,
		UserRole:       h.resolveRole(frame),
		UserPlan:       frame.UserPlan,
		ClientHistory:  frame.ConversationHistory,
	}
	if _, err := h.chatService.ProcessTurn(r.Context(), req); err != nil {
		h.log.Error().Err(err).
			Str("connectionId", connectionID).
			Str("conversationId", frame.ConversationID).
			Msg("turn failed")
		h.sendError(connectionID, "Failed to process message")
	}
}

func (h *Handler) handleClearHistory(connectionID string, frame Frame) {
	if frame.ConversationID == "" {
		h.sendError(connectionID, "conversationId is required")
		return
	}
	cleared, err := h.chatService.ClearHistory(frame.ConversationID)
	if err != nil {
		h.log.Error().Err(err).
			Str("conversationId", frame.ConversationID).
			Msg("clear history failed")
		h.sendError(connectionID, "Failed to clear history")
		return
	}
	if !cleared {
		h.sendError(connectionID, "Conversation not found")
		return
	}
	if err := h.registry.Send(connectionID, map[string]any{
		"type":           "history_cleared",
		"conversationId": frame.ConversationID,
		"timestamp":      services.NowTimestamp(),
	}); err != nil {
		h.log.Error().Err(err).Str("connectionId", connectionID).Msg("failed to confirm clear")
	}
}

// resolveRole trusts an explicit userRole from the frame, otherwise derives
// admin standing from the configured admin list.
func (h *Handler) resolveRole(frame Frame) string {
	if frame.UserRole != "" {
		return frame.UserRole
	}
	if h.cfg.IsAdminUser(frame.UserID) {
		return "admin"
	}
	return "user"
}

// sendError pushes an error frame; delivery failure is only logged so a dead
// client never takes down the read loop.
func (h *Handler) sendError(connectionID, message string) {
	if err := h.registry.Send(connectionID, map[string]any{
		"type":      "error",
		"message":   message,
		"timestamp": services.NowTimestamp(),
	}); err != nil {
		h.log.Error().Err(err).
			Str("connectionId", connectionID).
			Msg("failed to deliver error frame")
	}
}
