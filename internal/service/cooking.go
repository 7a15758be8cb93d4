package service

import (
	"context"
	"fmt"

	goaway "github.com/TwiN/go-away"
	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/config"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
)

// CookingService owns the conversational side of a guided session: response
// generation, chat history, and the full audio interaction turn.
type CookingService struct {
	Cfg         *config.Config
	ChatRepo    repository.ChatRepo
	Progress    *ProgressService
	Speech      ai.SpeechProvider
	Text        ai.TextProvider
	Synthesizer ai.SpeechSynthesizer
}

// NewCookingService creates a new CookingService.
func NewCookingService(cfg *config.Config, chatRepo repository.ChatRepo, progress *ProgressService, speech ai.SpeechProvider, text ai.TextProvider, synthesizer ai.SpeechSynthesizer) *CookingService {
	return &CookingService{
		Cfg:         cfg,
		ChatRepo:    chatRepo,
		Progress:    progress,
		Speech:      speech,
		Text:        text,
		Synthesizer: synthesizer,
	}
}

// VoiceTurn is the result of one full audio interaction: the recognized
// text, the assistant reply, and the synthesized audio for that reply.
type VoiceTurn struct {
	Transcription string
	Reply         string
	Audio         []byte
	History       []models.Message
}

// Transcribe converts raw audio to text via the speech provider.
func (s *CookingService) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	return s.Speech.TranscribeAudio(ctx, audioData)
}

// GenerateResponse produces an assistant reply to the transcribed text. The
// system prompt embeds the session's current recipe progress. With a session
// id both the user message and the reply are appended to chat history (two
// separate appends) and the full updated history is returned; without one,
// the turn is stateless and the history is nil.
//
// The assistant is kid-facing, so transcripts are profanity-masked before
// they reach the model or the stored history.
func (s *CookingService) GenerateResponse(ctx context.Context, transcription, sessionID string) (string, []models.Message, error) {
	transcription = goaway.Censor(transcription)

	state, err := s.Progress.Current(sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("load recipe state: %w", err)
	}

	systemPrompt, err := config.RenderPrompt(s.Cfg.Prompts.Coach.Respond.System, map[string]interface{}{
		"StageName":         state.CurrentStage.Name(),
		"LastCompletedStep": state.LastCompletedStep,
		"WaitingFor":        state.WaitingFor,
	})
	if err != nil {
		return "", nil, fmt.Errorf("render coach prompt: %w", err)
	}

	reply, err := s.Text.GenerateReply(ctx, systemPrompt, transcription)
	if err != nil {
		return "", nil, err
	}

	if sessionID == "" {
		return reply, nil, nil
	}

	if _, err := s.ChatRepo.AppendMessage(sessionID, models.RoleUser, transcription); err != nil {
		return "", nil, fmt.Errorf("append user message: %w", err)
	}
	if _, err := s.ChatRepo.AppendMessage(sessionID, models.RoleAssistant, reply); err != nil {
		return "", nil, fmt.Errorf("append assistant message: %w", err)
	}

	history, err := s.ChatRepo.GetHistory(sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("reload chat history: %w", err)
	}
	return reply, history, nil
}

// Speak synthesizes spoken audio for the given text.
func (s *CookingService) Speak(ctx context.Context, text string) ([]byte, error) {
	return s.Synthesizer.Synthesize(ctx, text)
}

// AudioChat runs the full audio turn: transcribe, generate a reply, then
// synthesize it. The steps run strictly in sequence and the first failure
// aborts the chain. The chain is deliberately not transactional: a
// synthesis failure after response generation leaves that turn's two
// messages in chat history even though the caller receives an error.
func (s *CookingService) AudioChat(ctx context.Context, audioData []byte, sessionID string) (*VoiceTurn, error) {
	transcription, err := s.Transcribe(ctx, audioData)
	if err != nil {
		return nil, err
	}

	reply, history, err := s.GenerateResponse(ctx, transcription, sessionID)
	if err != nil {
		return nil, err
	}

	audio, err := s.Speak(ctx, reply)
	if err != nil {
		return nil, err
	}

	return &VoiceTurn{
		Transcription: transcription,
		Reply:         reply,
		Audio:         audio,
		History:       history,
	}, nil
}

// GetChatHistory returns the session's full message sequence.
func (s *CookingService) GetChatHistory(sessionID string) ([]models.Message, error) {
	return s.ChatRepo.GetHistory(sessionID)
}

// ListSessions summarizes all recorded sessions.
func (s *CookingService) ListSessions() ([]models.SessionSummary, error) {
	return s.ChatRepo.ListSessions()
}
