package repository

import "github.com/bratatouille-bot/cereal-api/internal/models"

// ChatRepo is the interface for chat history operations.
type ChatRepo interface {
	AppendMessage(sessionID, role, content string) (models.Message, error)
	GetHistory(sessionID string) ([]models.Message, error)
	ListSessions() ([]models.SessionSummary, error)
}

// RecipeRepo is the interface for recipe state operations.
type RecipeRepo interface {
	// GetOrCreate returns the session's stored state, or the default state
	// without persisting it.
	GetOrCreate(sessionID string) (*models.RecipeState, error)
	// Mutate loads (or default-creates) the session's state, applies fn,
	// and persists the result. The load-apply-save sequence is atomic with
	// respect to other Mutate calls.
	Mutate(sessionID string, fn func(*models.RecipeState) error) (*models.RecipeState, error)
}
