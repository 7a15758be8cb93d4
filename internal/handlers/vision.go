package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/service"
)

// VisionHandler handles image analysis requests.
type VisionHandler struct {
	Service *service.VisionService
}

// NewVisionHandler creates a new VisionHandler.
func NewVisionHandler(visionService *service.VisionService) *VisionHandler {
	return &VisionHandler{Service: visionService}
}

// maxImageSize bounds uploaded scene images.
const maxImageSize = 10 << 20

// AnalyzeImage handles POST /vision/analyze-image.
func (h *VisionHandler) AnalyzeImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds maximum size of 10MB"})
		return
	}

	sessionID := c.PostForm("session_id")
	if sessionID != "" && !validSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session_id"})
		return
	}

	imgBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	prompt := c.PostForm("prompt")

	analysis, state, err := h.Service.AnalyzeImage(c.Request.Context(), imgBytes, contentType, prompt, sessionID)
	if err != nil {
		logger.Get().Error("image analysis failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	if prompt == "" {
		prompt = h.Service.Cfg.Prompts.Vision.Analyze.User
	}
	resp := gin.H{
		"status":   "success",
		"prompt":   prompt,
		"model":    ai.VisionModel,
		"analysis": analysis,
	}
	if state != nil {
		resp["recipe_state"] = state
	}
	c.JSON(http.StatusOK, resp)
}
