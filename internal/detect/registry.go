package detect

import "fmt"

// NewDetector creates a detector based on the specified variant.
func NewDetector(variant, remoteURL string, confidence float64) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "remote":
		if remoteURL == "" {
			return nil, fmt.Errorf("remote detector requires a server URL")
		}
		return NewRemoteDetector(remoteURL, confidence), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
