package neighbors

import (
	"context"
	"math"
	"sort"
)

// Dim is the embedding dimensionality.
const Dim = 512

// Entry is one gallery member: an identifier and its unit embedding.
type Entry struct {
	ID  string
	Vec []float32
}

// Neighbor is a gallery match with a similarity score in [0,1].
type Neighbor struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Embedder turns image bytes into a fixed-dimension embedding.
type Embedder interface {
	Embed(ctx context.Context, image []byte) ([]float32, error)
}

// HashEmbedder is the dependency-free fallback embedder: bytes folded into a
// unit vector. Not semantically meaningful, but stable and fast, which is
// what the offline gallery path needs.
type HashEmbedder struct{}

func (HashEmbedder) Embed(_ context.Context, image []byte) ([]float32, error) {
	return HashEmbedding(image), nil
}

// HashEmbedding folds image bytes into a unit vector of length Dim.
func HashEmbedding(data []byte) []float32 {
	v := make([]float32, Dim)
	for i, b := range data {
		v[i%Dim] += float32(b) / 255
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Average combines per-image embeddings into one query vector.
func Average(vecs [][]float32) []float32 {
	avg := make([]float32, Dim)
	if len(vecs) == 0 {
		return avg
	}
	for _, vec := range vecs {
		for i := 0; i < Dim && i < len(vec); i++ {
			avg[i] += vec[i]
		}
	}
	for i := range avg {
		avg[i] /= float32(len(vecs))
	}
	return avg
}

// Cosine returns the dot product over the shared prefix of a and b.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var s float64
	for i := 0; i < n; i++ {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// TopK scores the query against every gallery entry and returns the k best
// matches. Cosine similarity is rescaled from [-1,1] to [0,1] and clamped.
// Ties preserve gallery order.
func TopK(query []float32, gallery []Entry, k int) []Neighbor {
	scored := make([]Neighbor, 0, len(gallery))
	for _, entry := range gallery {
		score := (Cosine(query, entry.Vec) + 1) / 2
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		scored = append(scored, Neighbor{ID: entry.ID, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
