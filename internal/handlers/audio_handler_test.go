package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
	"github.com/bratatouille-bot/cereal-api/internal/service"
	"github.com/bratatouille-bot/cereal-api/internal/store"
	"github.com/bratatouille-bot/cereal-api/internal/testutil"
)

func newAudioRouter(t *testing.T, speech *testutil.MockSpeechProvider, upload service.Uploader) *gin.Engine {
	t.Helper()
	fileStore, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	cfg := testutil.TestConfig()
	cfg.EnvVars.S3Bucket = "captures-bucket"

	cooking := service.NewCookingService(
		cfg,
		repository.NewChatRepository(fileStore),
		service.NewProgressService(repository.NewRecipeRepository(fileStore)),
		speech, &testutil.MockTextProvider{}, &testutil.MockSynthesizer{},
	)
	archive := &service.ArchiveService{Cfg: cfg, Upload: upload}
	handler := NewAudioHandler(cooking, archive)

	r := gin.New()
	r.POST("/audio/speech-to-text", handler.SpeechToText)
	r.POST("/audio/process", handler.ProcessAudio)
	return r
}

func TestSpeechToText_MultipartUpload(t *testing.T) {
	speech := &testutil.MockSpeechProvider{
		TranscribeAudioFunc: func(ctx context.Context, audioData []byte) (string, error) {
			if string(audioData) != "fake-audio" {
				t.Errorf("audioData = %q", audioData)
			}
			return "pour the cereal", nil
		},
	}
	r := newAudioRouter(t, speech, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "capture.m4a")
	part.Write([]byte("fake-audio"))
	writer.Close()

	req := httptest.NewRequest("POST", "/audio/speech-to-text", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["transcription"] != "pour the cereal" {
		t.Errorf("transcription = %v", resp["transcription"])
	}
}

func TestSpeechToText_EmptyBody(t *testing.T) {
	r := newAudioRouter(t, &testutil.MockSpeechProvider{}, nil)

	req := httptest.NewRequest("POST", "/audio/speech-to-text", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400. body: %s", w.Code, w.Body.String())
	}
}

func TestProcessAudio_ArchivesRawBody(t *testing.T) {
	var uploadedKey string
	upload := func(ctx context.Context, cfg *config.Config, audio []byte, key, contentType string) (string, error) {
		uploadedKey = key
		return "https://bucket.example.com/" + key, nil
	}
	r := newAudioRouter(t, &testutil.MockSpeechProvider{}, upload)

	pcm := make([]byte, 16000) // half a second at 16 kHz
	req := httptest.NewRequest("POST", "/audio/process", bytes.NewReader(pcm))
	req.Header.Set("Content-Type", "application/octet-stream")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["duration_seconds"] != 0.5 {
		t.Errorf("duration_seconds = %v, want 0.5", resp["duration_seconds"])
	}
	if !strings.HasSuffix(uploadedKey, ".wav") {
		t.Errorf("key = %q, want a .wav key", uploadedKey)
	}
}
