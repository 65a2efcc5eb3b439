package detection

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/anggasct/greenwave"
)

// Aggregator classifies detections and folds them into per-lane readings
type Aggregator struct {
	classifier Classifier
}

// NewAggregator creates an aggregator over the given classifier
func NewAggregator(classifier Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate turns a batch of detections into one reading per lane.
// A detection whose classification fails is still counted, as normal
// traffic: an unidentifiable vehicle must never vanish from the queue.
// Readings are returned in lane-id order.
func (a *Aggregator) Aggregate(ctx context.Context, detections []Detection) ([]greenwave.Reading, error) {
	byLane := lo.GroupBy(detections, func(d Detection) string { return d.LaneID })

	readings := make([]greenwave.Reading, 0, len(byLane))
	for laneID, group := range byLane {
		reading := greenwave.Reading{LaneID: laneID}
		for _, d := range group {
			label, err := a.label(ctx, d)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				label = ""
			}
			if IsEmergencyLabel(label) {
				reading.Emergency++
			} else {
				reading.Normal++
			}
		}
		readings = append(readings, reading)
	}

	sort.Slice(readings, func(i, j int) bool { return readings[i].LaneID < readings[j].LaneID })
	return readings, nil
}

// label resolves a detection to a class label, preferring a pre-assigned
// label over an embedding over a raw crop
func (a *Aggregator) label(ctx context.Context, d Detection) (string, error) {
	if d.Label != "" {
		return d.Label, nil
	}
	if len(d.Embedding) > 0 {
		if ec, ok := a.classifier.(EmbeddingClassifier); ok {
			return ec.ClassifyEmbedding(d.Embedding)
		}
	}
	if len(d.Crop) > 0 && a.classifier != nil {
		return a.classifier.Classify(ctx, d.Crop)
	}
	return "", nil
}

// CountLabels tallies pre-labeled detections without touching the classifier
func CountLabels(detections []Detection) map[string]int {
	return lo.CountValuesBy(detections, func(d Detection) string { return d.Label })
}
