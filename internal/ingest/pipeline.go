// Package ingest implements the voice-expense ingestion pipeline: receive an
// audio upload, transcribe it, extract candidate expenses, map them onto the
// category registry and persist the batch in one transaction.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vittrack/internal/core"
	"vittrack/internal/events"
	"vittrack/internal/extract"
	"vittrack/internal/transcribe"
)

// acceptedExtension is the single audio container the pipeline takes in.
const acceptedExtension = ".wav"

// UserStore is the read-only user existence check the pipeline needs.
type UserStore interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

// ExpenseStore persists a batch of expenses atomically and returns the
// assigned IDs in insertion order.
type ExpenseStore interface {
	CreateExpenseBatch(ctx context.Context, expenses []core.Expense) ([]int64, error)
}

// Publisher notifies downstream consumers about created expenses. Publishing
// is best-effort; failures never fail the invocation.
type Publisher interface {
	PublishExpensesCreated(ctx context.Context, userID int64, expenseIDs []int64, source string) error
}

// Upload is one inbound audio submission.
type Upload struct {
	Filename string
	UserID   int64
	Content  io.Reader
}

// Result reports a completed invocation.
type Result struct {
	Created    int
	ExpenseIDs []int64
	Transcript string
}

// Pipeline runs one upload through transcription, extraction, category
// mapping and persistence. All collaborators are injected; the pipeline
// holds no per-request state and is safe for concurrent invocations.
type Pipeline struct {
	transcriber transcribe.Transcriber
	extractor   extract.Extractor
	users       UserStore
	expenses    ExpenseStore
	registry    *Registry
	publisher   Publisher

	tempDir string
	now     func() time.Time
}

// NewPipeline wires the pipeline. publisher may be nil when no message
// broker is configured.
func NewPipeline(t transcribe.Transcriber, e extract.Extractor, users UserStore, expenses ExpenseStore, registry *Registry, publisher Publisher) *Pipeline {
	return &Pipeline{
		transcriber: t,
		extractor:   e,
		users:       users,
		expenses:    expenses,
		registry:    registry,
		publisher:   publisher,
		tempDir:     os.TempDir(),
		now:         time.Now,
	}
}

// Run executes the full pipeline for one upload. The temporary copy of the
// audio is removed before Run returns, on success and failure alike.
func (p *Pipeline) Run(ctx context.Context, up Upload) (Result, error) {
	tempPath, err := p.receive(ctx, up)
	if err != nil {
		return Result{}, err
	}
	defer p.cleanup(ctx, tempPath)

	transcript, err := p.transcribe(ctx, tempPath)
	if err != nil {
		return Result{}, err
	}

	candidates, err := p.extract(ctx, transcript, up.UserID)
	if err != nil {
		return Result{}, err
	}

	expenses, err := p.mapCandidates(ctx, candidates, up.UserID)
	if err != nil {
		return Result{}, err
	}

	ids, err := p.persist(ctx, expenses)
	if err != nil {
		return Result{}, err
	}

	if p.publisher != nil && len(ids) > 0 {
		if err := p.publisher.PublishExpensesCreated(ctx, up.UserID, ids, events.SourceVoice); err != nil {
			// The batch is committed; losing the event only delays analytics.
			slog.ErrorContext(ctx, "Failed to publish expense event",
				"user_id", up.UserID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Voice ingestion completed",
		"user_id", up.UserID,
		"expenses_created", len(ids))

	return Result{Created: len(ids), ExpenseIDs: ids, Transcript: transcript}, nil
}

// receive validates the upload and writes a temporary copy. Both rejections
// happen before any temp file exists or any external call is made.
func (p *Pipeline) receive(ctx context.Context, up Upload) (string, error) {
	if strings.ToLower(filepath.Ext(up.Filename)) != acceptedExtension {
		return "", failf(KindInvalidInput, "receive", "only %s files accepted, got %q", acceptedExtension, up.Filename)
	}

	exists, err := p.users.UserExists(ctx, up.UserID)
	if err != nil {
		return "", fail(KindPersistence, "receive", err)
	}
	if !exists {
		return "", failf(KindNotFound, "receive", "user %d not found", up.UserID)
	}

	f, err := os.CreateTemp(p.tempDir, "upload_*"+acceptedExtension)
	if err != nil {
		return "", failf(KindPersistence, "receive", "create temp file: %v", err)
	}
	if _, err := io.Copy(f, up.Content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", failf(KindPersistence, "receive", "store upload: %v", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", failf(KindPersistence, "receive", "close temp file: %v", err)
	}

	return f.Name(), nil
}

func (p *Pipeline) transcribe(ctx context.Context, audioPath string) (string, error) {
	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", fail(KindUpstream, "transcribe", err)
	}
	slog.InfoContext(ctx, "Transcription finished", "transcript_length", len(transcript))
	return transcript, nil
}

func (p *Pipeline) extract(ctx context.Context, transcript string, userID int64) ([]core.CandidateExpense, error) {
	candidates, err := p.extractor.Extract(ctx, transcript, userID)
	if err != nil {
		return nil, fail(KindUpstream, "extract", err)
	}
	return candidates, nil
}

// mapCandidates validates each candidate and resolves its category name
// against the registry, stamping every row with the invocation time.
func (p *Pipeline) mapCandidates(ctx context.Context, candidates []core.CandidateExpense, userID int64) ([]core.Expense, error) {
	createdAt := p.now()
	expenses := make([]core.Expense, 0, len(candidates))
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, failf(KindUpstream, "map", "candidate %d: %v", i, err)
		}

		category, fellBack := p.registry.Resolve(c.Category)
		if fellBack {
			slog.WarnContext(ctx, "Unknown category, using default",
				"category", c.Category,
				"default", category.Name,
				"user_id", userID)
		}

		expenses = append(expenses, core.Expense{
			UserID:      userID,
			Amount:      c.Amount,
			Description: c.Description,
			CategoryID:  category.ID,
			CreatedAt:   createdAt,
		})
	}
	return expenses, nil
}

func (p *Pipeline) persist(ctx context.Context, expenses []core.Expense) ([]int64, error) {
	if len(expenses) == 0 {
		return nil, nil
	}
	ids, err := p.expenses.CreateExpenseBatch(ctx, expenses)
	if err != nil {
		return nil, fail(KindPersistence, "persist", err)
	}
	return ids, nil
}

func (p *Pipeline) cleanup(ctx context.Context, tempPath string) {
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		slog.ErrorContext(ctx, "Failed to remove temporary audio file",
			"path", tempPath, "error", err)
	}
}
