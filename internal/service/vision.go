package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"go.uber.org/zap"
)

// StageNotifier receives recipe state changes for live subscribers. It is
// satisfied by the websocket hub; a nil notifier disables broadcasting.
type StageNotifier interface {
	NotifyStageUpdate(sessionID string, state *models.RecipeState)
}

// VisionService analyzes cooking-scene images and feeds the interpretation
// into the recipe state machine.
type VisionService struct {
	Cfg      *config.Config
	Provider ai.VisionProvider
	Progress *ProgressService
	Notifier StageNotifier
}

// NewVisionService creates a new VisionService.
func NewVisionService(cfg *config.Config, provider ai.VisionProvider, progress *ProgressService, notifier StageNotifier) *VisionService {
	return &VisionService{
		Cfg:      cfg,
		Provider: provider,
		Progress: progress,
		Notifier: notifier,
	}
}

// AnalyzeImage validates the upload, makes the prompt stage-aware when a
// session is supplied, and forwards the model's interpretation to the state
// machine. The returned state is nil for sessionless calls.
func (s *VisionService) AnalyzeImage(ctx context.Context, imageData []byte, contentType, prompt, sessionID string) (*ai.VisionAnalysis, *models.RecipeState, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, NewInvalidInputError("uploaded file must be an image, got %q", contentType)
	}
	if len(imageData) == 0 {
		return nil, nil, NewInvalidInputError("uploaded image is empty")
	}

	if prompt == "" {
		prompt = s.Cfg.Prompts.Vision.Analyze.User
	}

	if sessionID != "" {
		state, err := s.Progress.Current(sessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("load recipe state: %w", err)
		}
		prompt = fmt.Sprintf("%s\n\nThe cook is currently on stage %d: %s.",
			prompt, state.CurrentStage, state.CurrentStage.Name())
	}

	analysis, err := s.Provider.AnalyzeImage(ctx, imageData, contentType, prompt)
	if err != nil {
		return nil, nil, err
	}

	if sessionID == "" {
		return analysis, nil, nil
	}

	state, err := s.Progress.Advance(sessionID, analysis)
	if err != nil {
		return nil, nil, err
	}

	logger.Get().Info("recipe stage updated",
		zap.String("session_id", sessionID),
		zap.Int("stage", int(state.CurrentStage)),
		zap.String("waiting_for", state.WaitingFor),
	)

	if s.Notifier != nil {
		s.Notifier.NotifyStageUpdate(sessionID, state)
	}
	return analysis, state, nil
}
