package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/store"
)

// FileRecipeRepository implements RecipeRepo on top of the whole-document
// collection store. Unlike chat histories, a corrupt recipe state document
// is a hard error: guessing at task progress could walk a user into an
// unsafe step, so the failure surfaces instead.
type FileRecipeRepository struct {
	Store *store.FileStore
	mu    sync.Mutex
}

// NewRecipeRepository creates a new FileRecipeRepository.
func NewRecipeRepository(s *store.FileStore) *FileRecipeRepository {
	return &FileRecipeRepository{Store: s}
}

func (r *FileRecipeRepository) loadStates() (map[string]*models.RecipeState, error) {
	states := make(map[string]*models.RecipeState)
	if err := r.Store.Load(store.CollectionRecipeStates, &states); err != nil {
		return nil, fmt.Errorf("load recipe states: %w", err)
	}
	return states, nil
}

// GetOrCreate returns the session's stored state or, for a session never
// updated before, the default state. The default is ephemeral: it is not
// persisted until a Mutate call commits a change.
func (r *FileRecipeRepository) GetOrCreate(sessionID string) (*models.RecipeState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	states, err := r.loadStates()
	if err != nil {
		return nil, err
	}
	if state, ok := states[sessionID]; ok {
		return state, nil
	}
	return models.NewRecipeState(sessionID, time.Now().UTC()), nil
}

// Mutate atomically applies fn to the session's state (default-creating it
// first) and persists the whole collection. If fn returns an error nothing
// is written.
func (r *FileRecipeRepository) Mutate(sessionID string, fn func(*models.RecipeState) error) (*models.RecipeState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	states, err := r.loadStates()
	if err != nil {
		return nil, err
	}
	state, ok := states[sessionID]
	if !ok {
		state = models.NewRecipeState(sessionID, time.Now().UTC())
		states[sessionID] = state
	}

	if err := fn(state); err != nil {
		return nil, err
	}

	if err := r.Store.Save(store.CollectionRecipeStates, states); err != nil {
		return nil, fmt.Errorf("save recipe states: %w", err)
	}
	return state, nil
}
