// Package semantic implements the vector memory of a profile: records stored
// with TF-IDF vectors and retrieved by cosine similarity.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rcliao/agent-recall/internal/chunker"
	"github.com/rcliao/agent-recall/internal/lang"
	"github.com/rcliao/agent-recall/internal/model"
	"github.com/rcliao/agent-recall/internal/store"
	"github.com/rcliao/agent-recall/internal/vector"
)

var tracer = otel.Tracer("agent_recall.semantic")

// KeywordCount is how many top-weighted terms are kept as keywords.
const KeywordCount = 10

// DefaultImportanceStep is the Boost/Diminish step when none is given.
const DefaultImportanceStep = 0.5

// ErrEmptyContent is returned when content is blank.
var ErrEmptyContent = errors.New("content cannot be empty")

// Service stores and retrieves semantic records.
type Service struct {
	repo       store.SemanticStore
	idf        *vector.IDFCache
	vectorizer *vector.Vectorizer
	ranker     *vector.Ranker
	logger     *slog.Logger
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	idfTTL time.Duration
}

// Option configures a Service.
type Option func(*options)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used for recency scoring.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFTTL overrides vector.DefaultIDFTTL.
func WithIDFTTL(d time.Duration) Option {
	return func(o *options) { o.idfTTL = d }
}

// NewService creates a Service over repo, tokenizing with langs.
func NewService(repo store.SemanticStore, langs *lang.Source, opts ...Option) (*Service, error) {
	o := options{logger: slog.Default(), idfTTL: vector.DefaultIDFTTL}
	for _, opt := range opts {
		opt(&o)
	}

	idf, err := vector.NewIDFCache(repo, vector.WithTTL(o.idfTTL), vector.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	v := vector.NewVectorizer(langs, idf)
	return &Service{
		repo:       repo,
		idf:        idf,
		vectorizer: v,
		ranker:     vector.NewRanker(v, o.now),
		logger:     o.logger,
	}, nil
}

// Close releases the IDF cache.
func (s *Service) Close() {
	s.idf.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Store vectorizes content and persists it. An importance of zero means
// model.DefaultImportance; other values are clamped.
func (s *Service) Store(ctx context.Context, profileID, content string, importance float64) (rec *model.SemanticRecord, err error) {
	ctx, span := tracer.Start(ctx, "semantic.Store",
		trace.WithAttributes(attribute.String("profile", profileID)))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	rec = &model.SemanticRecord{
		ProfileID:  profileID,
		Content:    content,
		Importance: importance,
	}
	if err := s.insert(ctx, rec); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("terms", len(rec.Vector)))
	s.logger.Debug("semantic record stored", "profile", profileID, "id", rec.ID, "terms", len(rec.Vector))
	return rec, nil
}

// StorePassages splits long content into passages and stores each as its
// own record, in order.
func (s *Service) StorePassages(ctx context.Context, profileID, content string, importance float64, opts chunker.Options) ([]*model.SemanticRecord, error) {
	passages := chunker.Split(content, opts)
	if len(passages) == 0 {
		return nil, ErrEmptyContent
	}
	recs := make([]*model.SemanticRecord, 0, len(passages))
	for _, p := range passages {
		rec, err := s.Store(ctx, profileID, p.Text, importance)
		if err != nil {
			return recs, fmt.Errorf("store passage %d: %w", p.Index, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// insert vectorizes rec.Content and writes rec.
func (s *Service) insert(ctx context.Context, rec *model.SemanticRecord) error {
	vec, err := s.vectorizer.Vectorize(ctx, rec.Content)
	if err != nil {
		return fmt.Errorf("vectorize: %w", err)
	}
	rec.Vector = vec
	rec.Keywords = vector.TopTerms(vec, KeywordCount)
	if rec.Importance == 0 {
		rec.Importance = model.DefaultImportance
	}
	rec.Importance = model.ClampImportance(rec.Importance)

	if err := s.repo.InsertRecord(ctx, rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	s.observeCorpus(ctx)
	return nil
}

func (s *Service) observeCorpus(ctx context.Context) {
	total, err := s.repo.CountDocuments(ctx)
	if err != nil {
		s.logger.Warn("count documents failed", "error", err)
		return
	}
	s.idf.ObserveCorpusSize(total)
}

// FindSimilar ranks the profile's records against query.
func (s *Service) FindSimilar(ctx context.Context, profileID, query string, opts vector.Options) (matches []model.Match, err error) {
	ctx, span := tracer.Start(ctx, "semantic.FindSimilar",
		trace.WithAttributes(
			attribute.String("profile", profileID),
			attribute.Int("limit", opts.Limit),
			attribute.Float64("threshold", opts.Threshold),
			attribute.Bool("boost_recent", opts.BoostRecent),
		))
	defer func() { endSpan(span, err) }()

	corpus, err := s.repo.ListRecords(ctx, profileID, 0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	matches, err = s.ranker.FindSimilar(ctx, query, corpus, opts)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("matches", len(matches)))
	return matches, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, profileID, id string) (*model.SemanticRecord, error) {
	return s.repo.GetRecord(ctx, profileID, id)
}

// List returns the profile's records, newest first. limit <= 0 means all.
func (s *Service) List(ctx context.Context, profileID string, limit int) ([]model.SemanticRecord, error) {
	return s.repo.ListRecords(ctx, profileID, limit)
}

// Boost raises importance by step (DefaultImportanceStep when step <= 0).
func (s *Service) Boost(ctx context.Context, profileID, id string, step float64) (*model.SemanticRecord, error) {
	if step <= 0 {
		step = DefaultImportanceStep
	}
	return s.adjust(ctx, profileID, id, step)
}

// Diminish lowers importance by step (DefaultImportanceStep when step <= 0).
func (s *Service) Diminish(ctx context.Context, profileID, id string, step float64) (*model.SemanticRecord, error) {
	if step <= 0 {
		step = DefaultImportanceStep
	}
	return s.adjust(ctx, profileID, id, -step)
}

func (s *Service) adjust(ctx context.Context, profileID, id string, delta float64) (*model.SemanticRecord, error) {
	rec, err := s.repo.GetRecord(ctx, profileID, id)
	if err != nil {
		return nil, err
	}
	rec.Importance = model.ClampImportance(rec.Importance + delta)
	if err := s.repo.UpdateImportance(ctx, profileID, id, rec.Importance); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record.
func (s *Service) Delete(ctx context.Context, profileID, id string) error {
	if err := s.repo.DeleteRecord(ctx, profileID, id); err != nil {
		return err
	}
	s.observeCorpus(ctx)
	return nil
}

// Stats summarizes the profile's records.
func (s *Service) Stats(ctx context.Context, profileID string) (*store.SemanticStats, error) {
	return s.repo.SemanticStats(ctx, profileID)
}

// ClearIDFCache drops every cached IDF value.
func (s *Service) ClearIDFCache() {
	s.idf.Clear()
	s.logger.Info("idf cache cleared")
}

// Tokens exposes the tokenizer used for vectors.
func (s *Service) Tokens(text string) []string {
	return s.vectorizer.Tokens(text)
}
