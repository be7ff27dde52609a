package controllers

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/SANATANIxAPI/pic/enhance"
)

// setupRouter creates a test router with the API endpoints
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	enhanceCtrl := NewEnhanceController(enhance.NewPipeline(nil, 95))
	router.GET("/health", HandleHealth)
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/enhance", enhanceCtrl.HandleEnhance)
		apiGroup.GET("/tiers", HandleTiers)
	}
	return router
}

func multipartImage(t *testing.T, w, h int) (*bytes.Buffer, string) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 90, G: 90, B: 90, A: 255})
	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "input.png")
	if err != nil {
		t.Fatalf("Failed to build multipart body: %v", err)
	}
	if _, err := part.Write(encoded.Bytes()); err != nil {
		t.Fatalf("Failed to build multipart body: %v", err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestHandleEnhanceLowTier(t *testing.T) {
	router := setupRouter()
	body, contentType := multipartImage(t, 100, 100)

	req, _ := http.NewRequest("POST", "/api/enhance?quality=low&output_format=png", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png content type, got %q", ct)
	}
	img, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Response did not decode as an image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("Expected a 50x50 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestHandleEnhanceDefaultsToJpeg(t *testing.T) {
	router := setupRouter()
	body, contentType := multipartImage(t, 64, 64)

	// No quality/output_format params: high tier, jpg out.
	req, _ := http.NewRequest("POST", "/api/enhance", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg content type, got %q", ct)
	}
	img, err := imaging.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("Response did not decode as an image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("High tier must not change dimensions, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestHandleEnhanceCorruptUpload(t *testing.T) {
	router := setupRouter()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "broken.png")
	part.Write([]byte("these are not image bytes"))
	writer.Close()

	req, _ := http.NewRequest("POST", "/api/enhance", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Error response is not JSON: %v", err)
	}
	if resp["error"] == "" {
		t.Error("Error response must carry a non-empty message")
	}
}

func TestHandleEnhanceMissingFile(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest("POST", "/api/enhance", bytes.NewBufferString(""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Health response is not JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", resp["status"])
	}
}

func TestHandleTiers(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest("GET", "/api/tiers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Tiers response is not JSON: %v", err)
	}
	if len(resp.Data) != 5 {
		t.Errorf("Expected 5 tiers, got %v", resp.Data)
	}
}
