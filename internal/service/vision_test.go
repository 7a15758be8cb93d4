package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/models"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
	"github.com/bratatouille-bot/cereal-api/internal/store"
	"github.com/bratatouille-bot/cereal-api/internal/testutil"
)

// recordingNotifier collects stage updates for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	updates []*models.RecipeState
}

func (n *recordingNotifier) NotifyStageUpdate(sessionID string, state *models.RecipeState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, state)
}

func newTestVisionService(t *testing.T, provider *testutil.MockVisionProvider, notifier StageNotifier) *VisionService {
	t.Helper()
	fileStore, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	progress := NewProgressService(repository.NewRecipeRepository(fileStore))
	return NewVisionService(testutil.TestConfig(), provider, progress, notifier)
}

func TestAnalyzeImage_RejectsNonImageBeforeProviderCall(t *testing.T) {
	provider := &testutil.MockVisionProvider{}
	svc := newTestVisionService(t, provider, nil)

	_, _, err := svc.AnalyzeImage(context.Background(), []byte("not an image"), "text/plain", "", "s1")
	var invalid InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidInputError", err)
	}
	if got := provider.Calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
}

func TestAnalyzeImage_RejectsEmptyPayload(t *testing.T) {
	provider := &testutil.MockVisionProvider{}
	svc := newTestVisionService(t, provider, nil)

	_, _, err := svc.AnalyzeImage(context.Background(), nil, "image/jpeg", "", "")
	var invalid InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidInputError", err)
	}
	if got := provider.Calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
}

func TestAnalyzeImage_StageAwarePrompt(t *testing.T) {
	var sawPrompt string
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			sawPrompt = prompt
			return testutil.SampleAnalysis("2 measure cereal", "level the scoop"), nil
		},
	}
	svc := newTestVisionService(t, provider, nil)

	_, state, err := svc.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg", "", "s1")
	if err != nil {
		t.Fatalf("AnalyzeImage error: %v", err)
	}
	if !strings.Contains(sawPrompt, "stage 1: Setup") {
		t.Errorf("prompt should carry the session's current stage, got %q", sawPrompt)
	}
	if state == nil || state.CurrentStage != models.StageMeasureCereal {
		t.Errorf("state = %+v, want stage advanced to Measure Cereal", state)
	}
}

func TestAnalyzeImage_SessionlessSkipsState(t *testing.T) {
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			if strings.Contains(prompt, "currently on stage") {
				t.Errorf("sessionless prompt should not reference a stage, got %q", prompt)
			}
			return testutil.SampleAnalysis("5 final check", "enjoy"), nil
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestVisionService(t, provider, notifier)

	analysis, state, err := svc.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg", "", "")
	if err != nil {
		t.Fatalf("AnalyzeImage error: %v", err)
	}
	if analysis == nil || state != nil {
		t.Errorf("analysis = %v, state = %v; want analysis without state", analysis, state)
	}
	if len(notifier.updates) != 0 {
		t.Errorf("notifier received %d updates, want 0", len(notifier.updates))
	}
}

func TestAnalyzeImage_NotifiesStageUpdate(t *testing.T) {
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			return testutil.SampleAnalysis("3 add milk", "pour the milk"), nil
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestVisionService(t, provider, notifier)

	_, _, err := svc.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg", "", "s1")
	if err != nil {
		t.Fatalf("AnalyzeImage error: %v", err)
	}
	if len(notifier.updates) != 1 {
		t.Fatalf("notifier received %d updates, want 1", len(notifier.updates))
	}
	if notifier.updates[0].CurrentStage != models.StageAddMilk {
		t.Errorf("broadcast stage = %v, want StageAddMilk", notifier.updates[0].CurrentStage)
	}
}

func TestAnalyzeImage_MalformedStepLeavesStateUntouched(t *testing.T) {
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			return testutil.SampleAnalysis("somewhere in the middle", "??"), nil
		},
	}
	svc := newTestVisionService(t, provider, nil)

	_, _, err := svc.AnalyzeImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg", "", "s1")
	var bad *ai.BadResponseError
	if !errors.As(err, &bad) {
		t.Fatalf("error = %v, want *ai.BadResponseError", err)
	}

	state, err := svc.Progress.Current("s1")
	if err != nil {
		t.Fatalf("Current error: %v", err)
	}
	if state.CurrentStage != models.StageSetup {
		t.Errorf("CurrentStage = %v, want untouched StageSetup", state.CurrentStage)
	}
}
