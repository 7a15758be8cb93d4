package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sampleRate is the capture rate of the device microphone stream.
const sampleRate = 16000

// Uploader stores an audio object and returns its location. Satisfied by
// the S3 layer; swapped out in tests.
type Uploader func(ctx context.Context, cfg *config.Config, audio []byte, key, contentType string) (string, error)

// ArchiveService wraps raw microphone captures in a WAV container and
// archives them to object storage.
type ArchiveService struct {
	Cfg    *config.Config
	Upload Uploader
}

// NewArchiveService creates a new ArchiveService backed by S3.
func NewArchiveService(cfg *config.Config) *ArchiveService {
	return &ArchiveService{Cfg: cfg, Upload: s3.UploadAudioToS3}
}

// Enabled reports whether an archive bucket is configured.
func (s *ArchiveService) Enabled() bool {
	return s.Cfg.EnvVars.S3Bucket != ""
}

// ArchiveCapture wraps the raw 16-bit mono PCM payload as WAV and uploads
// it under a timestamped key. Returns the object location and the clip
// duration.
func (s *ArchiveService) ArchiveCapture(ctx context.Context, pcm []byte) (string, time.Duration, error) {
	if !s.Enabled() {
		return "", 0, NewInvalidInputError("audio archive is not configured")
	}
	if len(pcm) == 0 {
		return "", 0, NewInvalidInputError("audio payload is empty")
	}

	wav := wrapPCMInWAV(pcm, sampleRate)
	samples := len(pcm) / 2
	duration := time.Duration(samples) * time.Second / sampleRate

	key := fmt.Sprintf("captures/%s/%s.wav", time.Now().UTC().Format("20060102"), uuid.New().String())
	location, err := s.Upload(ctx, s.Cfg, wav, key, "audio/wav")
	if err != nil {
		return "", 0, fmt.Errorf("archive capture: %w", err)
	}

	logger.Get().Info("audio capture archived",
		zap.String("key", key),
		zap.Int("samples", samples),
		zap.Duration("duration", duration),
	)
	return location, duration, nil
}

// wrapPCMInWAV prefixes a canonical 44-byte RIFF header for 16-bit mono PCM.
func wrapPCMInWAV(pcm []byte, rate int) []byte {
	const (
		channels       = 1
		bitsPerSample  = 16
		bytesPerSample = bitsPerSample / 8
	)
	byteRate := rate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, []byte("RIFF")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bitsPerSample)
	buf = append(buf, []byte("data")...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}
