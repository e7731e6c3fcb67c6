package npy

import (
	"fmt"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// FuseFiles fuses per-interval audio and video embedding arrays row by row
// and writes the [intervals, 3D] result to outPath.
func FuseFiles(audioPath, videoPath, outPath string) (rows, dims int, err error) {
	audio, _, err := ReadMatrix(audioPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read audio embeddings: %w", err)
	}
	video, _, err := ReadMatrix(videoPath)
	if err != nil {
		return 0, 0, fmt.Errorf("read video embeddings: %w", err)
	}
	if len(audio) != len(video) {
		return 0, 0, fmt.Errorf("%w: %d audio rows, %d video rows",
			domain.ErrInvalidInput, len(audio), len(video))
	}

	fused := make([][]float32, len(audio))
	for i := range audio {
		fused[i], err = domain.Fuse(audio[i], video[i])
		if err != nil {
			return 0, 0, fmt.Errorf("interval %d: %w", i, err)
		}
	}

	if err := WriteMatrix(outPath, fused); err != nil {
		return 0, 0, err
	}
	return len(fused), len(fused[0]), nil
}
