package testutil

import (
	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/config"
)

// TestPrompts returns a minimal prompt configuration mirroring the shape of
// configs/prompts.yaml.
func TestPrompts() *config.Prompts {
	return &config.Prompts{
		Vision: config.VisionPrompts{
			Analyze: config.PromptPair{
				User: "Describe the cereal preparation scene as JSON.",
			},
		},
		Coach: config.CoachPrompts{
			Respond: config.PromptPair{
				System: "You are coaching the {{.StageName}} stage. " +
					"Completed {{.LastCompletedStep}} step(s); waiting for {{.WaitingFor}}.",
			},
		},
	}
}

// TestConfig returns a Config populated with TestPrompts and harmless env
// values.
func TestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			Port:              "8080",
			DataDir:           "data",
			OpenAIAPIKey:      "test-openai-key",
			TextProvider:      "openai",
			ElevenLabsAPIKey:  "test-elevenlabs-key",
			ElevenLabsVoiceID: "test-voice",
		},
		Prompts: TestPrompts(),
	}
}

// SampleAnalysis returns a well-formed vision interpretation for the given
// step string.
func SampleAnalysis(currentStep, nextAction string) *ai.VisionAnalysis {
	return &ai.VisionAnalysis{
		CurrentStep:    currentStep,
		Status:         "in_progress",
		SceneElements:  []string{"bowl", "spoon"},
		Feedback:       "Looking good.",
		NextAction:     nextAction,
		SafetyConcerns: []string{},
	}
}
