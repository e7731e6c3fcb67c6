package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scribe/internal/adapters/driven/watch"
	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
	"github.com/custodia-labs/scribe/internal/logger"
)

var (
	matchEmbeddings  string
	matchTranscripts string
	matchCorpus      string
	matchName        string
	matchJSON        bool
	matchSave        bool
	matchWatch       bool
	matchClean       bool

	matchThreshold       float64
	matchTopK            int
	matchIntervalSeconds int
	matchSegmentMinutes  int
	matchKeyBase         int
	matchParallel        int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match lecture segments against a book corpus",
	Long: `Groups lecture intervals into fixed-duration segments, finds the book passages
most similar to each segment and links each segment to the preceding segments
it continues.

The interval embeddings are a [intervals, D] .npy array. The optional
transcripts file is a JSON object keyed "segment_<n>" holding the transcript
and video text of each interval; --key-base selects whether segment_1 or
segment_0 describes the first interval.

Examples:
  scribe match --corpus books/physics --embeddings lecture01_embeddings.npy
  scribe match --corpus books/physics --embeddings fused.npy \
      --transcripts lecture01.json --top-k 3 --json > segments.json
  scribe match --corpus books/physics --embeddings fused.npy --watch`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVarP(&matchEmbeddings, "embeddings", "e", "", "interval embeddings (.npy)")
	f.StringVarP(&matchTranscripts, "transcripts", "t", "", "per-interval transcript JSON")
	f.StringVarP(&matchCorpus, "corpus", "c", "", "corpus base path (without _embeddings.npy)")
	f.StringVar(&matchName, "name", "", "lecture name (default derived from the embeddings file)")
	f.BoolVar(&matchJSON, "json", false, "output segments as JSON")
	f.BoolVar(&matchSave, "save", false, "persist the run")
	f.BoolVarP(&matchWatch, "watch", "w", false, "re-run when the input files change")
	f.BoolVar(&matchClean, "clean-transcripts", false, "normalise transcript text before joining")

	f.Float64Var(&matchThreshold, "threshold", domain.DefaultSimilarityThreshold, "minimum similarity for matches and context")
	f.IntVarP(&matchTopK, "top-k", "k", domain.DefaultTopK, "maximum book references per segment")
	f.IntVar(&matchIntervalSeconds, "interval-seconds", domain.DefaultIntervalSeconds, "duration of one interval")
	f.IntVar(&matchSegmentMinutes, "segment-minutes", domain.DefaultSegmentMinutes, "duration of one segment")
	f.IntVar(&matchKeyBase, "key-base", domain.DefaultTranscriptKeyBase, "index of the first transcript key (0 or 1)")
	f.IntVar(&matchParallel, "parallel", domain.DefaultParallelism, "segments ranked concurrently")

	_ = matchCmd.MarkFlagRequired("embeddings")
	_ = matchCmd.MarkFlagRequired("corpus")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errRunsNotConfigured
	}

	settings, err := matchSettings(cmd)
	if err != nil {
		return err
	}

	req := driving.RunRequest{
		Lecture:          matchName,
		CorpusBase:       matchCorpus,
		EmbeddingsPath:   matchEmbeddings,
		TextPath:         matchTranscripts,
		CleanTranscripts: matchClean,
		Persist:          matchSave,
		Settings:         &settings,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := matchOnce(ctx, cmd, req); err != nil {
		return err
	}
	if !matchWatch {
		return nil
	}
	return watchAndMatch(ctx, cmd, req)
}

// matchSettings starts from the configured matcher settings and applies
// the flags given on the command line.
func matchSettings(cmd *cobra.Command) (domain.MatcherSettings, error) {
	settings := domain.DefaultMatcherSettings()
	if settingsService != nil {
		configured, err := settingsService.Matcher()
		if err != nil {
			return settings, fmt.Errorf("failed to get settings: %w", err)
		}
		settings = configured
	}

	f := cmd.Flags()
	if f.Changed("threshold") {
		settings.SimilarityThreshold = matchThreshold
	}
	if f.Changed("top-k") {
		settings.TopK = matchTopK
	}
	if f.Changed("interval-seconds") {
		settings.IntervalSeconds = matchIntervalSeconds
	}
	if f.Changed("segment-minutes") {
		settings.SegmentMinutes = matchSegmentMinutes
	}
	if f.Changed("key-base") {
		settings.TranscriptKeyBase = matchKeyBase
	}
	if f.Changed("parallel") {
		settings.Parallelism = matchParallel
	}

	return settings, settings.Validate()
}

func matchOnce(ctx context.Context, cmd *cobra.Command, req driving.RunRequest) error {
	run, err := runService.Run(ctx, req)
	if errors.Is(err, domain.ErrNoSegmentsFound) {
		cmd.Println("No segments found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if matchJSON {
		return outputJSON(cmd, run.Segments)
	}
	outputRunSummary(cmd, run, req.Persist)
	return nil
}

func watchAndMatch(ctx context.Context, cmd *cobra.Command, req driving.RunRequest) error {
	paths := []string{req.EmbeddingsPath}
	if req.TextPath != "" {
		paths = append(paths, req.TextPath)
	}

	watcher, err := watch.New(paths, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.PrintErrln("Watching for changes. Press Ctrl+C to stop.")
	for range changes {
		logger.Info("Inputs changed, re-running match")
		if err := matchOnce(ctx, cmd, req); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Half-written inputs are expected while an upstream stage exports.
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	return nil
}

func outputRunSummary(cmd *cobra.Command, run *domain.MatchRun, persisted bool) {
	cmd.Printf("Lecture: %s\n", run.Lecture)
	cmd.Printf("Corpus:  %s\n", run.Corpus)
	if persisted {
		cmd.Printf("Run ID:  %s\n", run.ID)
	}
	cmd.Println()
	cmd.Println(segmentTable(run.Segments, terminalWidth(cmd.OutOrStdout())))
	cmd.Printf("%d segments, %d book references\n", len(run.Segments), run.ReferenceCount())
}

func segmentTable(segments []domain.LectureSegment, width int) string {
	textWidth := max(width-80, 20)

	rows := make([][]string, 0, len(segments))
	for i := range segments {
		seg := &segments[i]
		top := "-"
		if len(seg.BookReferences) > 0 {
			ref := seg.BookReferences[0]
			top = fmt.Sprintf("%s p.%d (%.2f)", ref.BookName, ref.Page, ref.Similarity)
		}
		rows = append(rows, []string{
			strconv.Itoa(seg.SegmentID),
			fmt.Sprintf("%.1f-%.1f", seg.TimestampStart, seg.TimestampEnd),
			strconv.Itoa(seg.NumEmbeddings),
			strconv.Itoa(len(seg.BookReferences)),
			top,
			formatContext(seg.ContextSegments),
			preview(seg.LectureAudioText, textWidth),
		})
	}

	return renderTable(
		[]string{"Segment", "Minutes", "Intervals", "Refs", "Top Reference", "Context", "Transcript"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func formatContext(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
