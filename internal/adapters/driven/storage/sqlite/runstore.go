package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
)

// timeLayout is fixed width so that created_at sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save persists a run with all of its segments and references.
// An existing run with the same ID is replaced.
func (s *runStore) Save(ctx context.Context, run *domain.MatchRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	settings, err := json.Marshal(run.Settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("replacing run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, lecture, corpus, settings, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Lecture, run.Corpus, string(settings), run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	segStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_segments (run_id, segment_id, timestamp_start, timestamp_end,
			audio_text, video_text, context_segments, num_embeddings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing segment insert: %w", err)
	}
	defer segStmt.Close()

	refStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segment_references (run_id, segment_id, rank, similarity, text, page, book_name, chunk_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing reference insert: %w", err)
	}
	defer refStmt.Close()

	for i := range run.Segments {
		seg := &run.Segments[i]
		contextSegments := seg.ContextSegments
		if contextSegments == nil {
			contextSegments = []int{}
		}
		ctxJSON, err := json.Marshal(contextSegments)
		if err != nil {
			return fmt.Errorf("marshaling context segments: %w", err)
		}

		_, err = segStmt.ExecContext(ctx, run.ID, seg.SegmentID, seg.TimestampStart, seg.TimestampEnd,
			seg.LectureAudioText, seg.LectureVideoText, string(ctxJSON), seg.NumEmbeddings)
		if err != nil {
			return fmt.Errorf("inserting segment %d: %w", seg.SegmentID, err)
		}

		for rank, ref := range seg.BookReferences {
			_, err = refStmt.ExecContext(ctx, run.ID, seg.SegmentID, rank, ref.Similarity,
				ref.Text, ref.Page, ref.BookName, ref.ChunkID)
			if err != nil {
				return fmt.Errorf("inserting reference %d of segment %d: %w", rank, seg.SegmentID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID with its segments in segment order.
func (s *runStore) Get(ctx context.Context, id string) (*domain.MatchRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, lecture, corpus, settings, created_at,
			(SELECT COUNT(*) FROM run_segments WHERE run_id = runs.id)
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	segments, err := s.loadSegments(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Segments = segments
	return run, nil
}

// List returns all runs, newest first, without segments.
func (s *runStore) List(ctx context.Context) ([]domain.MatchRun, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, lecture, corpus, settings, created_at,
			(SELECT COUNT(*) FROM run_segments WHERE run_id = runs.id)
		FROM runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.MatchRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run and, through cascades, its segments and references.
func (s *runStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *runStore) loadSegments(ctx context.Context, runID string) ([]domain.LectureSegment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT segment_id, timestamp_start, timestamp_end, audio_text, video_text,
			context_segments, num_embeddings
		FROM run_segments WHERE run_id = ?
		ORDER BY segment_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	segments := []domain.LectureSegment{}
	index := make(map[int]int)
	for rows.Next() {
		var seg domain.LectureSegment
		var ctxJSON string
		if err := rows.Scan(&seg.SegmentID, &seg.TimestampStart, &seg.TimestampEnd,
			&seg.LectureAudioText, &seg.LectureVideoText, &ctxJSON, &seg.NumEmbeddings); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		if err := json.Unmarshal([]byte(ctxJSON), &seg.ContextSegments); err != nil {
			return nil, fmt.Errorf("decoding context segments: %w", err)
		}
		if seg.ContextSegments == nil {
			seg.ContextSegments = []int{}
		}
		seg.BookReferences = []domain.BookReference{}
		index[seg.SegmentID] = len(segments)
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	refRows, err := s.store.db.QueryContext(ctx, `
		SELECT segment_id, similarity, text, page, book_name, chunk_id
		FROM segment_references WHERE run_id = ?
		ORDER BY segment_id, rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	defer refRows.Close()

	for refRows.Next() {
		var segmentID int
		var ref domain.BookReference
		if err := refRows.Scan(&segmentID, &ref.Similarity, &ref.Text, &ref.Page,
			&ref.BookName, &ref.ChunkID); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		i, ok := index[segmentID]
		if !ok {
			continue
		}
		segments[i].BookReferences = append(segments[i].BookReferences, ref)
	}
	if err := refRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating references: %w", err)
	}

	return segments, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.MatchRun, error) {
	var run domain.MatchRun
	var settings, createdAt string
	err := row.Scan(&run.ID, &run.Lecture, &run.Corpus, &settings, &createdAt, &run.NumSegments)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if err := json.Unmarshal([]byte(settings), &run.Settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &run, nil
}
