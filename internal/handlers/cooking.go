package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/service"
)

// CookingHandler handles the conversational endpoints of a guided session.
type CookingHandler struct {
	Service  *service.CookingService
	Progress *service.ProgressService
}

// NewCookingHandler creates a new CookingHandler.
func NewCookingHandler(cookingService *service.CookingService, progress *service.ProgressService) *CookingHandler {
	return &CookingHandler{Service: cookingService, Progress: progress}
}

// GenerateResponseRequest is the body for POST /cooking/generate-response.
type GenerateResponseRequest struct {
	Transcription string `json:"transcription" binding:"required"`
	SessionID     string `json:"session_id"`
}

// GenerateResponse handles POST /cooking/generate-response.
func (h *CookingHandler) GenerateResponse(c *gin.Context) {
	var req GenerateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transcription is required"})
		return
	}
	if req.SessionID != "" && !validSessionID(req.SessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
		return
	}

	reply, history, err := h.Service.GenerateResponse(c.Request.Context(), req.Transcription, req.SessionID)
	if err != nil {
		logger.Get().Error("response generation failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"response":     reply,
		"chat_history": history,
	})
}

// GetChatHistory handles GET /cooking/chat-history/:session_id.
func (h *CookingHandler) GetChatHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	if !validSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
		return
	}

	history, err := h.Service.GetChatHistory(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"chat_history": history,
	})
}

// ListSessions handles GET /cooking/sessions.
func (h *CookingHandler) ListSessions(c *gin.Context) {
	sessions, err := h.Service.ListSessions()
	if err != nil {
		logger.Get().Error("failed to list sessions", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"sessions": sessions,
	})
}

// GetState handles GET /cooking/state/:session_id. Reading never persists
// the default state.
func (h *CookingHandler) GetState(c *gin.Context) {
	sessionID := c.Param("session_id")
	if !validSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
		return
	}

	state, err := h.Progress.Current(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"state":  state,
	})
}

// AudioChat handles POST /cooking/audio-chat: one full audio turn. The
// response body is the synthesized reply audio; the recognized text and the
// reply land in headers so the client gets them without a second request.
func (h *CookingHandler) AudioChat(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID != "" && !validSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
		return
	}

	audioBytes, ok := readAudioUpload(c)
	if !ok {
		return
	}

	turn, err := h.Service.AudioChat(c.Request.Context(), audioBytes, sessionID)
	if err != nil {
		logger.Get().Error("audio chat failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.Header("X-Transcription", turn.Transcription)
	c.Header("X-Response", turn.Reply)
	c.Data(http.StatusOK, "audio/mpeg", turn.Audio)
}

// SpeakRequest is the body for POST /cooking/speak.
type SpeakRequest struct {
	Text string `json:"text" binding:"required"`
}

// Speak handles POST /cooking/speak.
func (h *CookingHandler) Speak(c *gin.Context) {
	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	audio, err := h.Service.Speak(c.Request.Context(), req.Text)
	if err != nil {
		logger.Get().Error("speech synthesis failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
