package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/npy"
)

func TestIntervalsFuseCmd(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.npy")
	video := filepath.Join(dir, "video.npy")
	out := filepath.Join(dir, "fused.npy")
	require.NoError(t, npy.WriteMatrix(audio, [][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, npy.WriteMatrix(video, [][]float32{{2, 0}, {0, 2}}))

	output, err := executeCommand(t, nil, nil,
		"intervals", "fuse", "--audio", audio, "--video", video, "-o", out)

	require.NoError(t, err)
	assert.Contains(t, output, "2 intervals, 6 dimensions")

	rows, dims, err := npy.ReadMatrix(out)
	require.NoError(t, err)
	assert.Equal(t, 6, dims)
	assert.Equal(t, []float32{1, 0, 2, 0, 2, 0}, rows[0])
}

func TestIntervalsFuseCmd_RequiresFlags(t *testing.T) {
	_, err := executeCommand(t, nil, nil, "intervals", "fuse", "--audio", "a.npy")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
