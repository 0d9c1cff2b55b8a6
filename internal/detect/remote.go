package detect

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RemoteDetector calls a layout detection API on a GPU server. The wire
// contract: GET /health probes availability, POST /detect takes a
// base64 PNG and returns labeled boxes.
type RemoteDetector struct {
	BaseURL         string
	Confidence      float64
	ProtectedLabels map[string]bool
	Client          *http.Client

	mu        sync.Mutex
	available bool // only successful probes are cached; failures retry
}

// NewRemoteDetector creates a detector for the given server URL.
func NewRemoteDetector(baseURL string, confidence float64) *RemoteDetector {
	return &RemoteDetector{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		Confidence:      confidence,
		ProtectedLabels: CopyLabels(nil),
		Client:          &http.Client{Timeout: 30 * time.Second},
	}
}

// IsAvailable probes the server's health endpoint. A success is cached;
// a failure is not, so a server coming up later is picked up.
func (d *RemoteDetector) IsAvailable() bool {
	d.mu.Lock()
	if d.available {
		d.mu.Unlock()
		return true
	}
	d.mu.Unlock()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(d.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	ok := resp.StatusCode == http.StatusOK

	d.mu.Lock()
	d.available = ok
	d.mu.Unlock()
	return ok
}

type detectRequest struct {
	ImageBase64     string   `json:"image_base64"`
	Confidence      float64  `json:"confidence"`
	ProtectedLabels []string `json:"protected_labels"`
}

type detectResponse struct {
	Regions []struct {
		Bbox       [4]int  `json:"bbox"`
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"regions"`
}

// Detect posts the page image to the server and filters the returned
// regions by label and confidence.
func (d *RemoteDetector) Detect(img image.Image) ([]ProtectedRegion, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	labels := make([]string, 0, len(d.ProtectedLabels))
	for label, on := range d.ProtectedLabels {
		if on {
			labels = append(labels, label)
		}
	}

	payload, err := json.Marshal(detectRequest{
		ImageBase64:     base64.StdEncoding.EncodeToString(buf.Bytes()),
		Confidence:      d.Confidence,
		ProtectedLabels: labels,
	})
	if err != nil {
		return nil, err
	}

	resp, err := d.Client.Post(d.BaseURL+"/detect", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detect request: server returned %s", resp.Status)
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("detect response: %w", err)
	}

	regions := make([]ProtectedRegion, 0, len(parsed.Regions))
	for _, r := range parsed.Regions {
		if !d.ProtectedLabels[r.Label] || r.Confidence < d.Confidence {
			continue
		}
		regions = append(regions, ProtectedRegion{
			Bbox:       image.Rect(r.Bbox[0], r.Bbox[1], r.Bbox[2], r.Bbox[3]),
			Label:      r.Label,
			Confidence: r.Confidence,
		})
	}
	return regions, nil
}
