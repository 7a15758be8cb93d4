package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bratatouille-bot/cereal-api/internal/logger"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/store"
	"go.uber.org/zap"
)

// FileChatRepository implements ChatRepo on top of the whole-document
// collection store. A mutex serializes the load-append-save sequence so
// concurrent appends to the same collection cannot lose writes.
type FileChatRepository struct {
	Store *store.FileStore
	mu    sync.Mutex
}

// NewChatRepository creates a new FileChatRepository.
func NewChatRepository(s *store.FileStore) *FileChatRepository {
	return &FileChatRepository{Store: s}
}

// loadHistories reads the chat history collection. A corrupt document is
// tolerated and treated as empty rather than failing the request.
func (r *FileChatRepository) loadHistories() map[string]*models.ChatHistory {
	histories := make(map[string]*models.ChatHistory)
	if err := r.Store.Load(store.CollectionChatHistories, &histories); err != nil {
		logger.Get().Warn("chat history collection unreadable, starting empty",
			zap.Error(err),
		)
		return make(map[string]*models.ChatHistory)
	}
	return histories
}

// AppendMessage appends a message with the current timestamp to the
// session's history, creating the history on first use.
func (r *FileChatRepository) AppendMessage(sessionID, role, content string) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	histories := r.loadHistories()
	history, ok := histories[sessionID]
	if !ok {
		history = &models.ChatHistory{}
		histories[sessionID] = history
	}

	msg := models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	history.Messages = append(history.Messages, msg)

	if err := r.Store.Save(store.CollectionChatHistories, histories); err != nil {
		return models.Message{}, fmt.Errorf("save chat histories: %w", err)
	}
	return msg, nil
}

// GetHistory returns the session's messages in append order.
func (r *FileChatRepository) GetHistory(sessionID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	histories := r.loadHistories()
	history, ok := histories[sessionID]
	if !ok {
		return nil, NewNotFoundError("no chat history for session %s", sessionID)
	}
	return history.Messages, nil
}

// ListSessions summarizes every stored session. LastUpdated is the maximum
// message timestamp; sessions are returned most recently updated first.
func (r *FileChatRepository) ListSessions() ([]models.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	histories := r.loadHistories()
	summaries := make([]models.SessionSummary, 0, len(histories))
	for sessionID, history := range histories {
		summary := models.SessionSummary{
			SessionID:    sessionID,
			MessageCount: len(history.Messages),
		}
		for _, msg := range history.Messages {
			if msg.Timestamp.After(summary.LastUpdated) {
				summary.LastUpdated = msg.Timestamp
			}
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})
	return summaries, nil
}
