package ai

import "context"

// VisionProvider interprets a cooking scene image against a text prompt.
type VisionProvider interface {
	AnalyzeImage(ctx context.Context, imageData []byte, contentType string, prompt string) (*VisionAnalysis, error)
}

// SpeechProvider handles speech-to-text (Whisper).
type SpeechProvider interface {
	TranscribeAudio(ctx context.Context, audioData []byte) (string, error)
}

// TextProvider generates an assistant reply for one conversational turn.
type TextProvider interface {
	GenerateReply(ctx context.Context, systemPrompt string, userText string) (string, error)
}

// SpeechSynthesizer converts assistant text into spoken audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VisionAnalysis is the structured interpretation the vision model is
// instructed to return for a cooking scene.
type VisionAnalysis struct {
	// CurrentStep begins with the stage ordinal, e.g. "3 add milk".
	CurrentStep    string   `json:"current_step"`
	Status         string   `json:"status"`
	SceneElements  []string `json:"scene_elements"`
	Feedback       string   `json:"feedback"`
	NextAction     string   `json:"next_action"`
	SafetyConcerns []string `json:"safety_concerns"`
}
