package domain

import (
	"fmt"
	"math"
)

// Normalize returns the L2-normalised copy of v.
// A zero vector normalises to a zero vector. Normalising twice yields the same unit vector.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		return out
	}
	norm := math.Sqrt(sq)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Expected: len(a), Got: len(b), Context: "dot product"}
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Cosine returns the cosine similarity of a and b, normalising both internally.
// The result is clamped to [-1, 1]; zero vectors have similarity 0.
func Cosine(a, b []float32) (float64, error) {
	sim, err := Dot(Normalize(a), Normalize(b))
	if err != nil {
		return 0, err
	}
	return ClampSimilarity(sim), nil
}

// ClampSimilarity bounds a dot product of unit vectors to the cosine range.
// Float32 rounding can push it slightly past ±1.
func ClampSimilarity(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Mean returns the element-wise mean of vectors.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: mean of zero vectors", ErrInvalidInput)
	}
	dim := len(vectors[0])
	sums := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &DimensionError{Expected: dim, Got: len(v), Context: fmt.Sprintf("vector %d", i)}
		}
		for j, x := range v {
			sums[j] += float64(x)
		}
	}
	out := make([]float32, dim)
	n := float64(len(vectors))
	for j, s := range sums {
		out[j] = float32(s / n)
	}
	return out, nil
}

// Representative returns the normalised mean of vectors, the vector that stands
// for a whole segment in continuity comparisons.
func Representative(vectors [][]float32) ([]float32, error) {
	mean, err := Mean(vectors)
	if err != nil {
		return nil, err
	}
	return Normalize(mean), nil
}

// Fuse combines an audio and a visual embedding of one interval into
// concat(audio, video, audio*video).
func Fuse(audio, video []float32) ([]float32, error) {
	if len(audio) != len(video) {
		return nil, &DimensionError{Expected: len(audio), Got: len(video), Context: "fuse video to audio"}
	}
	d := len(audio)
	out := make([]float32, 3*d)
	copy(out, audio)
	copy(out[d:], video)
	for i := range audio {
		out[2*d+i] = audio[i] * video[i]
	}
	return out, nil
}
