package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"clearout/internal/api"
	"clearout/internal/identify"
	"clearout/internal/identify/barcode"
	"clearout/internal/identify/ocr"
	"clearout/internal/identify/vision"
	"clearout/internal/refdata"
	"clearout/internal/testsupport"
)

func newTestServer(t *testing.T, token string, describers map[string]vision.Describer) *api.Server {
	t.Helper()
	store := refdata.NewStore("")
	classifier, err := store.Classifier()
	if err != nil {
		t.Fatalf("load classifier: %v", err)
	}
	catalog, err := store.Catalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken(token))
	return api.NewServer(cfg, identify.Deps{
		Barcode:    barcode.NewDetector(nil, nil),
		OCR:        ocr.NewDetector(nil, catalog, nil),
		Classifier: classifier,
		Catalog:    catalog,
	}, describers)
}

func multipartUpload(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload["ok"] {
		t.Fatalf("payload = %v, want ok true", payload)
	}
}

func TestIdentifyRejectsEmptyUpload(t *testing.T) {
	srv := newTestServer(t, "", nil)
	body, contentType := multipartUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/api/identify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "no files" {
		t.Fatalf("error = %q, want no files", payload["error"])
	}
}

func TestIdentifyBookByFilename(t *testing.T) {
	srv := newTestServer(t, "", nil)
	body, contentType := multipartUpload(t, "isbn-9781234567897.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result identify.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ResolutionLevel != identify.ResolutionSKU {
		t.Fatalf("resolution = %q, want sku", result.ResolutionLevel)
	}
	if result.NextStep != identify.NextSell {
		t.Fatalf("next_step = %q, want sell", result.NextStep)
	}
	if result.Attributes.Category != "Media > Books" {
		t.Fatalf("category = %q", result.Attributes.Category)
	}
}

func TestIdentifyFilenameTextDisabled(t *testing.T) {
	srv := newTestServer(t, "", nil)
	body, contentType := multipartUpload(t, "isbn-9781234567897.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify?allowFilenameText=false", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result identify.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ResolutionLevel == identify.ResolutionSKU {
		t.Fatal("filename code leaked through despite allowFilenameText=false")
	}
}

func TestIdentifyTooManyFiles(t *testing.T) {
	srv := newTestServer(t, "", nil)
	names := make([]string, 7)
	for i := range names {
		names[i] = "photo.jpg"
	}
	body, contentType := multipartUpload(t, names...)
	req := httptest.NewRequest(http.MethodPost, "/api/identify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIdentifyUnknownStage(t *testing.T) {
	srv := newTestServer(t, "", nil)
	body, contentType := multipartUpload(t, "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify?enableStages=sonar", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIdentifyStageAliases(t *testing.T) {
	fixtures := t.TempDir()
	fixture, err := json.Marshal(vision.Description{
		Category:   "kitchenware",
		BrandGuess: "Lodge",
		ModelGuess: "L8SK3",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fixtures, "skillet.json"), fixture, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, "", map[string]vision.Describer{
		"mock": vision.NewMockDescriber(fixtures),
	})
	body, contentType := multipartUpload(t, "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify?enableStages=vlm,clip&mockId=skillet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result identify.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Attributes.Brand != "Lodge" {
		t.Fatalf("brand = %q, want vlm alias to run the vision stage", result.Attributes.Brand)
	}
}

func TestIdentifyBearerToken(t *testing.T) {
	srv := newTestServer(t, "secret", nil)
	body, contentType := multipartUpload(t, "photo.jpg")

	req := httptest.NewRequest(http.MethodPost, "/api/identify", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	body, contentType = multipartUpload(t, "photo.jpg")
	req = httptest.NewRequest(http.MethodPost, "/api/identify", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", rec.Code)
	}
}

func TestIdentifyMockVisionProvider(t *testing.T) {
	fixtures := t.TempDir()
	fixture, err := json.Marshal(vision.Description{
		Category:   "kitchenware",
		BrandGuess: "Lodge",
		ModelGuess: "L8SK3",
		Materials:  []string{"cast iron"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fixtures, "skillet.json"), fixture, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, "", map[string]vision.Describer{
		"mock": vision.NewMockDescriber(fixtures),
	})
	body, contentType := multipartUpload(t, "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify?enableStages=vision&mockId=skillet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result identify.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Attributes.Brand != "Lodge" || result.Attributes.Model != "L8SK3" {
		t.Fatalf("attributes = %+v, want Lodge L8SK3", result.Attributes)
	}
	if result.ResolutionLevel != identify.ResolutionBrandModel {
		t.Fatalf("resolution = %q, want brand_model", result.ResolutionLevel)
	}
	if result.Attributes.Material != "cast iron" {
		t.Fatalf("material = %q", result.Attributes.Material)
	}
}

func TestIdentifyUnknownProvider(t *testing.T) {
	srv := newTestServer(t, "", nil)
	body, contentType := multipartUpload(t, "photo.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/identify?provider=dreamer", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
