package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// QueryCorpusInput is the input schema for the query_corpus tool.
type QueryCorpusInput struct {
	Corpus string `json:"corpus" jsonschema:"base path of the book corpus"`
	Text   string `json:"text" jsonschema:"free text to find in the books"`
	TopK   int    `json:"top_k,omitempty" jsonschema:"maximum number of references to return (default from settings)"`
}

// QueryCorpusOutput is the output schema for the query_corpus tool.
type QueryCorpusOutput struct {
	References []domain.BookReference `json:"references"`
	Count      int                    `json:"count"`
}

// MatchLectureInput is the input schema for the match_lecture tool.
type MatchLectureInput struct {
	Lecture          string `json:"lecture,omitempty" jsonschema:"human-readable lecture name"`
	Corpus           string `json:"corpus" jsonschema:"base path of the book corpus"`
	Embeddings       string `json:"embeddings" jsonschema:"path to the interval embedding .npy file"`
	Transcripts      string `json:"transcripts,omitempty" jsonschema:"path to the per-interval text JSON file"`
	CleanTranscripts bool   `json:"clean_transcripts,omitempty" jsonschema:"normalise transcript text before use"`
	Save             bool   `json:"save,omitempty" jsonschema:"persist the run when run storage is enabled"`
}

// RunSummary is the per-run entry returned by list_runs.
type RunSummary struct {
	ID          string `json:"id"`
	Lecture     string `json:"lecture"`
	Corpus      string `json:"corpus"`
	CreatedAt   string `json:"created_at"`
	NumSegments int    `json:"num_segments"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct{}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunSummary `json:"runs"`
	Count int          `json:"count"`
}

// GetRunInput is the input schema for the get_run tool.
type GetRunInput struct {
	ID string `json:"id" jsonschema:"identifier of a persisted run"`
}

// RunOutput wraps a full run for the match_lecture and get_run tools.
type RunOutput struct {
	Run *domain.MatchRun `json:"run"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_corpus",
		Description: "Find the book passages most similar to a piece of text",
	}, s.handleQueryCorpus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "match_lecture",
		Description: "Align lecture interval embeddings with a book corpus",
	}, s.handleMatchLecture)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List persisted match runs, newest first",
	}, s.handleListRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_run",
		Description: "Fetch a persisted match run with all of its segments",
	}, s.handleGetRun)
}

func (s *Server) handleQueryCorpus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryCorpusInput,
) (*mcp.CallToolResult, QueryCorpusOutput, error) {
	if input.Corpus == "" || input.Text == "" {
		return nil, QueryCorpusOutput{}, fmt.Errorf("corpus and text are required: %w", domain.ErrInvalidInput)
	}
	refs, err := s.ports.Corpus.Query(ctx, input.Corpus, input.Text, input.TopK)
	if err != nil {
		return nil, QueryCorpusOutput{}, err
	}
	if refs == nil {
		refs = []domain.BookReference{}
	}
	return nil, QueryCorpusOutput{References: refs, Count: len(refs)}, nil
}

func (s *Server) handleMatchLecture(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MatchLectureInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if input.Corpus == "" || input.Embeddings == "" {
		return nil, RunOutput{}, fmt.Errorf("corpus and embeddings are required: %w", domain.ErrInvalidInput)
	}

	run, err := s.ports.Runs.Run(ctx, driving.RunRequest{
		Lecture:          input.Lecture,
		CorpusBase:       input.Corpus,
		EmbeddingsPath:   input.Embeddings,
		TextPath:         input.Transcripts,
		CleanTranscripts: input.CleanTranscripts,
		Persist:          input.Save,
	})
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, RunOutput{Run: run}, nil
}

func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.ports.Runs.List(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}
	out := ListRunsOutput{Runs: summarise(runs), Count: len(runs)}
	return nil, out, nil
}

func (s *Server) handleGetRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	if input.ID == "" {
		return nil, RunOutput{}, fmt.Errorf("id is required: %w", domain.ErrInvalidInput)
	}
	run, err := s.ports.Runs.Get(ctx, input.ID)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, RunOutput{Run: run}, nil
}

func summarise(runs []domain.MatchRun) []RunSummary {
	out := make([]RunSummary, len(runs))
	for i := range runs {
		out[i] = RunSummary{
			ID:          runs[i].ID,
			Lecture:     runs[i].Lecture,
			Corpus:      runs[i].Corpus,
			CreatedAt:   runs[i].CreatedAt.UTC().Format(timeFormat),
			NumSegments: runs[i].NumSegments,
		}
	}
	return out
}
