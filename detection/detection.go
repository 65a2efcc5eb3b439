// Package detection turns raw per-lane vehicle detections into the
// counted readings the signal controller consumes. Detected vehicles
// are classified by type; any vehicle whose class suggests an emergency
// service raises the lane's emergency count, everything else counts as
// normal traffic.
package detection

import (
	"strings"

	"github.com/samber/lo"
)

// Detection is one detected vehicle attributed to a lane. A detection
// may arrive pre-labeled, as a feature embedding, or as a raw crop;
// the first available form wins, in that order.
type Detection struct {
	LaneID    string    `json:"lane_id"`
	Label     string    `json:"pred_label,omitempty"`
	Embedding []float64 `json:"embedding,omitempty"`
	Crop      []byte    `json:"crop_base64,omitempty"`
}

// emergencyMarkers are matched case-insensitively against class labels
var emergencyMarkers = []string{"ambulance", "emergency", "police", "fire"}

// IsEmergencyLabel reports whether a class label denotes an emergency vehicle
func IsEmergencyLabel(label string) bool {
	lower := strings.ToLower(label)
	return lo.SomeBy(emergencyMarkers, func(marker string) bool {
		return strings.Contains(lower, marker)
	})
}
