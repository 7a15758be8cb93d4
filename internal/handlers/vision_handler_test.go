package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bratatouille-bot/cereal-api/internal/ai"
	"github.com/bratatouille-bot/cereal-api/internal/repository"
	"github.com/bratatouille-bot/cereal-api/internal/service"
	"github.com/bratatouille-bot/cereal-api/internal/store"
	"github.com/bratatouille-bot/cereal-api/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newVisionRouter(t *testing.T, provider *testutil.MockVisionProvider) *gin.Engine {
	t.Helper()
	fileStore, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	progress := service.NewProgressService(repository.NewRecipeRepository(fileStore))
	svc := service.NewVisionService(testutil.TestConfig(), provider, progress, nil)

	r := gin.New()
	r.POST("/vision/analyze-image", NewVisionHandler(svc).AnalyzeImage)
	return r
}

// buildImageForm builds a multipart body with an explicit part content type.
func buildImageForm(t *testing.T, contentType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="scene.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	part.Write([]byte{0xff, 0xd8, 0xff})

	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestAnalyzeImage_Success(t *testing.T) {
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			return testutil.SampleAnalysis("2 measure cereal", "level the scoop"), nil
		},
	}
	r := newVisionRouter(t, provider)

	body, contentType := buildImageForm(t, "image/jpeg", map[string]string{"session_id": "s1"})
	req := httptest.NewRequest("POST", "/vision/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "success" {
		t.Errorf("status field = %v", resp["status"])
	}
	analysis, ok := resp["analysis"].(map[string]interface{})
	if !ok || analysis["next_action"] != "level the scoop" {
		t.Errorf("analysis = %v", resp["analysis"])
	}
	state, ok := resp["recipe_state"].(map[string]interface{})
	if !ok || state["current_stage"] != float64(2) {
		t.Errorf("recipe_state = %v", resp["recipe_state"])
	}
}

func TestAnalyzeImage_NonImageRejected(t *testing.T) {
	provider := &testutil.MockVisionProvider{}
	r := newVisionRouter(t, provider)

	body, contentType := buildImageForm(t, "text/plain", nil)
	req := httptest.NewRequest("POST", "/vision/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400. body: %s", w.Code, w.Body.String())
	}
	if got := provider.Calls.Load(); got != 0 {
		t.Errorf("provider called %d times, want 0", got)
	}
}

func TestAnalyzeImage_MissingFile(t *testing.T) {
	r := newVisionRouter(t, &testutil.MockVisionProvider{})

	req := httptest.NewRequest("POST", "/vision/analyze-image", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAnalyzeImage_BadResponseMapsToBadGateway(t *testing.T) {
	provider := &testutil.MockVisionProvider{
		AnalyzeImageFunc: func(ctx context.Context, imageData []byte, contentType, prompt string) (*ai.VisionAnalysis, error) {
			return testutil.SampleAnalysis("no ordinal here", "??"), nil
		},
	}
	r := newVisionRouter(t, provider)

	body, contentType := buildImageForm(t, "image/jpeg", map[string]string{"session_id": "s1"})
	req := httptest.NewRequest("POST", "/vision/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502. body: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeImage_InvalidSessionID(t *testing.T) {
	r := newVisionRouter(t, &testutil.MockVisionProvider{})

	body, contentType := buildImageForm(t, "image/jpeg", map[string]string{"session_id": "../etc/passwd"})
	req := httptest.NewRequest("POST", "/vision/analyze-image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400. body: %s", w.Code, w.Body.String())
	}
}
