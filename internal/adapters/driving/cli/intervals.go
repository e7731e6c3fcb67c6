package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/npy"
)

var (
	fuseAudio string
	fuseVideo string
	fuseOut   string
)

var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Prepare interval embeddings",
}

var intervalsFuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse audio and video interval embeddings",
	Long: `Combines per-interval audio and video embeddings into a single array.
Each fused row is the audio vector, the video vector and their element-wise
product, so the output has three times the input width.`,
	Args: cobra.NoArgs,
	RunE: runIntervalsFuse,
}

func init() {
	intervalsFuseCmd.Flags().StringVar(&fuseAudio, "audio", "", "audio embeddings (.npy)")
	intervalsFuseCmd.Flags().StringVar(&fuseVideo, "video", "", "video embeddings (.npy)")
	intervalsFuseCmd.Flags().StringVarP(&fuseOut, "out", "o", "", "fused output (.npy)")
	_ = intervalsFuseCmd.MarkFlagRequired("audio")
	_ = intervalsFuseCmd.MarkFlagRequired("video")
	_ = intervalsFuseCmd.MarkFlagRequired("out")

	intervalsCmd.AddCommand(intervalsFuseCmd)
	rootCmd.AddCommand(intervalsCmd)
}

func runIntervalsFuse(cmd *cobra.Command, _ []string) error {
	rows, dims, err := npy.FuseFiles(fuseAudio, fuseVideo, fuseOut)
	if err != nil {
		return fmt.Errorf("fuse failed: %w", err)
	}
	cmd.Printf("Wrote %s: %d intervals, %d dimensions\n", fuseOut, rows, dims)
	return nil
}
