package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/service"
)

// AudioHandler handles transcription and capture-archival requests.
type AudioHandler struct {
	Cooking *service.CookingService
	Archive *service.ArchiveService
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(cooking *service.CookingService, archive *service.ArchiveService) *AudioHandler {
	return &AudioHandler{Cooking: cooking, Archive: archive}
}

// maxAudioSize bounds uploaded audio payloads.
const maxAudioSize = 25 << 20

// SpeechToText handles POST /audio/speech-to-text.
func (h *AudioHandler) SpeechToText(c *gin.Context) {
	audioBytes, ok := readAudioUpload(c)
	if !ok {
		return
	}

	transcription, err := h.Cooking.Transcribe(c.Request.Context(), audioBytes)
	if err != nil {
		logger.Get().Error("transcription failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"transcription": transcription,
	})
}

// ProcessAudio handles POST /audio/process. The raw capture is wrapped as
// WAV and archived to object storage.
func (h *AudioHandler) ProcessAudio(c *gin.Context) {
	audioBytes, ok := readAudioUpload(c)
	if !ok {
		return
	}

	location, duration, err := h.Archive.ArchiveCapture(c.Request.Context(), audioBytes)
	if err != nil {
		logger.Get().Error("audio archive failed", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"location":         location,
		"duration_seconds": duration.Seconds(),
	})
}

// readAudioUpload accepts either a multipart "file" field or a raw request
// body. On failure it writes the error response and returns ok=false.
func readAudioUpload(c *gin.Context) ([]byte, bool) {
	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		if header.Size > maxAudioSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Audio exceeds maximum size of 25MB"})
			return nil, false
		}
		audioBytes, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio"})
			return nil, false
		}
		return audioBytes, true
	}

	audioBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAudioSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio"})
		return nil, false
	}
	if len(audioBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio payload is required"})
		return nil, false
	}
	return audioBytes, true
}
