package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Classifier assigns a vehicle-type label to a cropped detection
type Classifier interface {
	Classify(ctx context.Context, crop []byte) (string, error)
}

// Embedder maps a cropped detection into a feature vector
type Embedder interface {
	Embed(ctx context.Context, crop []byte) ([]float64, error)
}

// EmbeddingClassifier labels a pre-computed feature vector directly
type EmbeddingClassifier interface {
	ClassifyEmbedding(embedding []float64) (string, error)
}

// CentroidClassifier labels a crop with the class whose stored centroid
// is nearest to the crop's embedding by cosine similarity.
type CentroidClassifier struct {
	embedder  Embedder
	centroids map[string][]float64
}

// NewCentroidClassifier creates a classifier over the given centroids
func NewCentroidClassifier(embedder Embedder, centroids map[string][]float64) (*CentroidClassifier, error) {
	if embedder == nil {
		return nil, fmt.Errorf("centroid classifier requires an embedder")
	}
	if len(centroids) == 0 {
		return nil, fmt.Errorf("centroid classifier requires at least one centroid")
	}
	return &CentroidClassifier{embedder: embedder, centroids: centroids}, nil
}

// LoadCentroids reads a JSON file mapping class labels to centroid vectors
func LoadCentroids(path string) (map[string][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading centroid file: %w", err)
	}
	var centroids map[string][]float64
	if err := json.Unmarshal(data, &centroids); err != nil {
		return nil, fmt.Errorf("parsing centroid file: %w", err)
	}
	return centroids, nil
}

// Classify embeds the crop and returns the nearest centroid's label
func (c *CentroidClassifier) Classify(ctx context.Context, crop []byte) (string, error) {
	embedding, err := c.embedder.Embed(ctx, crop)
	if err != nil {
		return "", fmt.Errorf("embedding crop: %w", err)
	}
	return c.ClassifyEmbedding(embedding)
}

// ClassifyEmbedding returns the label of the centroid nearest to the
// given embedding by cosine similarity
func (c *CentroidClassifier) ClassifyEmbedding(embedding []float64) (string, error) {
	best := ""
	bestScore := math.Inf(-1)
	for label, centroid := range c.centroids {
		score, err := cosine(embedding, centroid)
		if err != nil {
			return "", fmt.Errorf("centroid %q: %w", label, err)
		}
		if score > bestScore || (score == bestScore && label < best) {
			best = label
			bestScore = score
		}
	}
	return best, nil
}

// cosine computes the cosine similarity of two equal-length vectors
func cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
