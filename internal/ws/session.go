package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket message types for the session protocol.
const (
	MsgTypeChatMessage  = "chat_message"  // Client asks a question about the task
	MsgTypeChatResponse = "chat_response" // Assistant reply to a question
	MsgTypeStageUpdate  = "stage_update"  // Recipe progress changed
	MsgTypeError        = "error"         // Error message
	MsgTypeConnected    = "connected"     // Connection confirmed
)

// WSMessage is the envelope for all messages sent over the session WebSocket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatMessagePayload is sent by the client to ask a question.
type ChatMessagePayload struct {
	Message string `json:"message"`
}

// ChatResponsePayload is sent by the server with the assistant reply.
type ChatResponsePayload struct {
	Message string `json:"message"`
}

// StageUpdatePayload announces a change to the session's recipe progress.
type StageUpdatePayload struct {
	SessionID         string `json:"session_id"`
	Stage             int    `json:"stage"`
	StageName         string `json:"stage_name"`
	LastCompletedStep int    `json:"last_completed_step"`
	WaitingFor        string `json:"waiting_for"`
	MilkAdded         bool   `json:"milk_added"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	SessionID string `json:"session_id"`
}

// SessionHandler manages WebSocket connections for live session updates.
// It also satisfies service.StageNotifier so vision-driven progress changes
// reach every subscriber of the session.
type SessionHandler struct {
	Hub     *Hub
	Cooking *service.CookingService
}

// NewSessionHandler returns a new SessionHandler.
func NewSessionHandler(hub *Hub, cooking *service.CookingService) *SessionHandler {
	return &SessionHandler{
		Hub:     hub,
		Cooking: cooking,
	}
}

// upgrader is configured for session WebSocket upgrades.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Device clients on the local network send no Origin header.
		if origin == "" {
			return true
		}
		if strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost" {
			return true
		}
		return false
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleSession upgrades an HTTP request to a WebSocket connection
// subscribed to a session's live updates.
func (sh *SessionHandler) HandleSession(c *gin.Context) {
	log := logger.Get()

	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "session_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	client := &Client{
		Hub:       sh.Hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: sessionID,
	}
	sh.Hub.Register <- client

	connectedPayload, _ := json.Marshal(ConnectedPayload{SessionID: sessionID})
	connectedMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeConnected,
		Payload: connectedPayload,
	})
	client.Send <- connectedMsg

	log.Info("session subscription started",
		zap.String("session_id", sessionID),
	)

	go client.WritePump()
	go client.ReadPump(func(cl *Client, data []byte) {
		sh.handleMessage(cl, data)
	})
}

// NotifyStageUpdate broadcasts a recipe progress change to every client
// subscribed to the session.
func (sh *SessionHandler) NotifyStageUpdate(sessionID string, state *models.RecipeState) {
	payload, _ := json.Marshal(StageUpdatePayload{
		SessionID:         sessionID,
		Stage:             int(state.CurrentStage),
		StageName:         state.CurrentStage.Name(),
		LastCompletedStep: state.LastCompletedStep,
		WaitingFor:        state.WaitingFor,
		MilkAdded:         state.MilkAddedTime != nil,
	})
	msg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeStageUpdate,
		Payload: payload,
	})
	sh.Hub.Broadcast <- &SessionMessage{
		SessionID: sessionID,
		Message:   msg,
		Sender:    nil,
	}
}

// handleMessage parses an incoming WebSocket message and routes it.
func (sh *SessionHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		sh.sendError(client, "invalid message format")
		return
	}

	logger.Get().Debug("received ws message",
		zap.String("type", msg.Type),
		zap.String("session_id", client.SessionID),
	)

	switch msg.Type {
	case MsgTypeChatMessage:
		sh.handleChatMessage(client, msg.Payload)

	default:
		sh.sendError(client, "unknown message type: "+msg.Type)
	}
}

// handleChatMessage processes a question about the task.
func (sh *SessionHandler) handleChatMessage(client *Client, payload json.RawMessage) {
	log := logger.Get()

	var chatMsg ChatMessagePayload
	if err := json.Unmarshal(payload, &chatMsg); err != nil {
		sh.sendError(client, "invalid chat message payload")
		return
	}

	if chatMsg.Message == "" {
		sh.sendError(client, "message cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reply, _, err := sh.Cooking.GenerateResponse(ctx, chatMsg.Message, client.SessionID)
	if err != nil {
		log.Error("failed to generate reply",
			zap.String("session_id", client.SessionID),
			zap.Error(err),
		)
		sh.sendError(client, "failed to generate a reply")
		return
	}

	responsePayload, _ := json.Marshal(ChatResponsePayload{Message: reply})
	responseMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeChatResponse,
		Payload: responsePayload,
	})
	client.Send <- responseMsg
}

// sendError sends an error message to a single client.
func (sh *SessionHandler) sendError(client *Client, message string) {
	errPayload, _ := json.Marshal(ErrorPayload{Message: message})
	errMsg, _ := json.Marshal(WSMessage{
		Type:    MsgTypeError,
		Payload: errPayload,
	})
	client.Send <- errMsg
}
