package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// pageSeparator splits pages in text extracted with pdftotext.
const pageSeparator = "\f"

var (
	corpusBookName string
	corpusJSON     bool
	corpusTopK     int
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Build and inspect book corpora",
	Long: `A corpus is a pair of files sharing a base path:
  <base>_embeddings.npy  chunk embeddings, one row per chunk
  <base>_metadata.json   chunk metadata in the same order`,
}

var corpusBuildCmd = &cobra.Command{
	Use:   "build <base> <pages.txt>...",
	Short: "Chunk and embed books into a corpus",
	Long: `Splits each book into overlapping chunks, embeds them with the configured
embedding provider and writes the corpus files at <base>.

Each input is plain text with pages separated by form feeds, as produced by
"pdftotext book.pdf book.txt". The book name defaults to the file name.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCorpusBuild,
}

var corpusInspectCmd = &cobra.Command{
	Use:   "inspect <base>",
	Short: "Show a corpus summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusInspect,
}

var corpusQueryCmd = &cobra.Command{
	Use:   "query <base> <text>",
	Short: "Find the passages most similar to a text",
	Args:  cobra.ExactArgs(2),
	RunE:  runCorpusQuery,
}

func init() {
	corpusBuildCmd.Flags().StringVar(&corpusBookName, "name", "", "book name (single input only)")
	corpusBuildCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	corpusInspectCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	corpusQueryCmd.Flags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	corpusQueryCmd.Flags().IntVarP(&corpusTopK, "top-k", "k", 0, "maximum results (default from settings)")

	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusInspectCmd)
	corpusCmd.AddCommand(corpusQueryCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusBuild(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errCorpusNotConfigured
	}

	base, files := args[0], args[1:]
	if corpusBookName != "" && len(files) > 1 {
		return errors.New("--name can only be used with a single input")
	}

	books := make([]driving.BookPages, 0, len(files))
	for _, file := range files {
		book, err := readBookPages(file)
		if err != nil {
			return err
		}
		if corpusBookName != "" {
			book.BookName = corpusBookName
		}
		books = append(books, book)
	}

	result, err := corpusService.Build(cmd.Context(), base, books)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if corpusJSON {
		return outputJSON(cmd, result)
	}
	cmd.Printf("Built corpus %s: %d books, %d chunks, %d dimensions\n",
		result.Base, result.Books, result.Chunks, result.Dimensions)
	return nil
}

// readBookPages reads a form-feed separated text file.
func readBookPages(path string) (driving.BookPages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return driving.BookPages{}, fmt.Errorf("read %s: %w", path, err)
	}

	pages := strings.Split(string(data), pageSeparator)
	// pdftotext terminates the last page with a form feed too.
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return driving.BookPages{BookName: name, Pages: pages}, nil
}

func runCorpusInspect(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errCorpusNotConfigured
	}

	summary, err := corpusService.Inspect(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	if corpusJSON {
		return outputJSON(cmd, summary)
	}
	cmd.Printf("Corpus:     %s\n", summary.Name)
	cmd.Printf("Chunks:     %d\n", summary.Chunks)
	cmd.Printf("Pages:      %d\n", summary.Pages)
	cmd.Printf("Dimensions: %d\n", summary.Dimensions)
	cmd.Printf("Books:      %s\n", strings.Join(summary.Books, ", "))
	return nil
}

func runCorpusQuery(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errCorpusNotConfigured
	}

	refs, err := corpusService.Query(cmd.Context(), args[0], args[1], corpusTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if corpusJSON {
		return outputJSON(cmd, refs)
	}
	if len(refs) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	cmd.Println(referenceTable(refs, terminalWidth(cmd.OutOrStdout())))
	return nil
}

func referenceTable(refs []domain.BookReference, width int) string {
	textWidth := max(width-50, 20)
	rows := make([][]string, 0, len(refs))
	for i, ref := range refs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.4f", ref.Similarity),
			ref.BookName,
			strconv.Itoa(ref.Page),
			preview(ref.Text, textWidth),
		})
	}
	return renderTable(
		[]string{"#", "Similarity", "Book", "Page", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft},
	)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
