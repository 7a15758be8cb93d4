package service

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/testutil"
)

func TestArchiveCapture_WrapsPCMAndUploads(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.EnvVars.S3Bucket = "captures-bucket"

	var uploaded []byte
	var uploadedKey, uploadedType string
	svc := &ArchiveService{
		Cfg: cfg,
		Upload: func(ctx context.Context, cfg *config.Config, audio []byte, key, contentType string) (string, error) {
			uploaded = audio
			uploadedKey = key
			uploadedType = contentType
			return "https://example.com/" + key, nil
		},
	}

	pcm := make([]byte, 32000) // one second at 16 kHz, 16-bit mono
	location, duration, err := svc.ArchiveCapture(context.Background(), pcm)
	if err != nil {
		t.Fatalf("ArchiveCapture error: %v", err)
	}
	if duration != time.Second {
		t.Errorf("duration = %v, want 1s", duration)
	}
	if location == "" {
		t.Error("location is empty")
	}
	if uploadedType != "audio/wav" {
		t.Errorf("content type = %q, want audio/wav", uploadedType)
	}
	if uploadedKey == "" || uploadedKey[len(uploadedKey)-4:] != ".wav" {
		t.Errorf("key = %q, want a .wav key", uploadedKey)
	}

	if len(uploaded) != 44+len(pcm) {
		t.Fatalf("payload = %d bytes, want 44-byte header plus PCM", len(uploaded))
	}
	if string(uploaded[:4]) != "RIFF" || string(uploaded[8:12]) != "WAVE" {
		t.Errorf("header magic = %q %q", uploaded[:4], uploaded[8:12])
	}
	if rate := binary.LittleEndian.Uint32(uploaded[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d, want 16000", rate)
	}
	if dataLen := binary.LittleEndian.Uint32(uploaded[40:44]); dataLen != uint32(len(pcm)) {
		t.Errorf("data chunk length = %d, want %d", dataLen, len(pcm))
	}
}

func TestArchiveCapture_DisabledWithoutBucket(t *testing.T) {
	svc := &ArchiveService{Cfg: testutil.TestConfig(), Upload: nil}
	if svc.Enabled() {
		t.Error("Enabled() = true without a bucket")
	}

	_, _, err := svc.ArchiveCapture(context.Background(), []byte{1, 2})
	var invalid InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want InvalidInputError", err)
	}
}

func TestArchiveCapture_RejectsEmptyPayload(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.EnvVars.S3Bucket = "captures-bucket"
	svc := &ArchiveService{Cfg: cfg}

	_, _, err := svc.ArchiveCapture(context.Background(), nil)
	var invalid InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want InvalidInputError", err)
	}
}
