package detect

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
)

func layoutServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad detect request: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ImageBase64 == "" {
			t.Error("Detect request carries no image")
		}
		if len(req.ProtectedLabels) == 0 {
			t.Error("Detect request carries no labels")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"regions": []map[string]interface{}{
				{"bbox": []int{10, 10, 50, 50}, "label": "plain_text", "confidence": 0.9},
				{"bbox": []int{60, 60, 90, 90}, "label": "abandon", "confidence": 0.9},
				{"bbox": []int{100, 100, 140, 140}, "label": "table", "confidence": 0.2},
			},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRemoteDetector(t *testing.T) {
	server := layoutServer(t)
	detector := NewRemoteDetector(server.URL, 0.5)

	if !detector.IsAvailable() {
		t.Fatal("Expected detector to be available")
	}

	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	regions, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// The unprotected label and the low-confidence region are filtered.
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	want := image.Rect(10, 10, 50, 50)
	if regions[0].Bbox != want {
		t.Errorf("Expected bbox %v, got %v", want, regions[0].Bbox)
	}
	if regions[0].Label != "plain_text" {
		t.Errorf("Expected label plain_text, got %q", regions[0].Label)
	}
}

func TestRemoteDetectorUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	detector := NewRemoteDetector(server.URL, 0.5)
	if detector.IsAvailable() {
		t.Error("Expected detector to be unavailable after server shutdown")
	}
}

func TestRemoteDetectorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	detector := NewRemoteDetector(server.URL, 0.5)
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if _, err := detector.Detect(img); err == nil {
		t.Error("Expected error on server failure, got nil")
	}
}
