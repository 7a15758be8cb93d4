package service

import (
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
)

// ProgressService is the recipe state machine: it derives per-session task
// progress from vision observations.
type ProgressService struct {
	Repo repository.RecipeRepo
}

// NewProgressService creates a new ProgressService.
func NewProgressService(repo repository.RecipeRepo) *ProgressService {
	return &ProgressService{Repo: repo}
}

// Current returns the session's recipe state, materializing (but not
// persisting) the default on first reference.
func (s *ProgressService) Current(sessionID string) (*models.RecipeState, error) {
	return s.Repo.GetOrCreate(sessionID)
}

// Advance applies a vision observation to the session's state and persists
// it. The observation's current_step must begin with a stage ordinal in
// 1-5; anything else is a BadResponseError from the vision model and the
// stored state is left untouched.
func (s *ProgressService) Advance(sessionID string, analysis *ai.VisionAnalysis) (*models.RecipeState, error) {
	stage, err := models.ParseStage(analysis.CurrentStep)
	if err != nil {
		return nil, &ai.BadResponseError{Provider: "vision", Reason: err.Error()}
	}

	return s.Repo.Mutate(sessionID, func(state *models.RecipeState) error {
		state.ApplyObservation(stage, analysis.NextAction, time.Now().UTC())
		return nil
	})
}
