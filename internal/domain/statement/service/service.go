// Package service orchestrates statement ingestion: parse, normalize,
// classify, persist, and recompute the affected monthly snapshots.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/parser"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

var tracer = otel.Tracer("statement")

// TransactionStore is the repository surface the service needs.
type TransactionStore interface {
	SaveBatch(ctx context.Context, transactions []statement.Transaction) (int64, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]statement.Transaction, error)
}

// SnapshotStore persists recomputed snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot spend.Snapshot) error
}

// Metrics counts ingestion outcomes; a nil-safe no-op implementation exists
// in pkg/metrics for tests.
type Metrics interface {
	StatementIngested(bank string)
	TransactionsIngested(count int)
	RowsRejected(count int)
}

// IngestRequest describes one uploaded statement.
type IngestRequest struct {
	UserID      uuid.UUID
	StatementID string
	Bank        string // resolves the bank profile; empty means generic
	Filename    string // extension picks the parser
	File        io.Reader
}

// IngestResult reports what one upload produced.
type IngestResult struct {
	StatementID      string                     `json:"statement_id"`
	TotalRows        int                        `json:"total_rows"`
	Ingested         int64                      `json:"ingested"`
	ParseErrors      []parser.ParseError        `json:"parse_errors,omitempty"`
	NormalizeErrors  []statement.NormalizeError `json:"normalize_errors,omitempty"`
	MonthsRecomputed []spend.MonthKey           `json:"months_recomputed"`
}

// Service runs the ingestion pipeline.
type Service struct {
	transactions TransactionStore
	snapshots    SnapshotStore
	classifier   *taxonomy.Classifier
	aggregator   *spend.Aggregator
	metrics      Metrics
	logger       *slog.Logger
}

// NewService creates an ingestion service.
func NewService(transactions TransactionStore, snapshots SnapshotStore, classifier *taxonomy.Classifier, metrics Metrics, logger *slog.Logger) *Service {
	return &Service{
		transactions: transactions,
		snapshots:    snapshots,
		classifier:   classifier,
		aggregator:   spend.NewAggregator(),
		metrics:      metrics,
		logger:       logger,
	}
}

// RecordsRequest carries pre-extracted statement rows, for collaborators
// that sync statements out of band instead of uploading a file.
type RecordsRequest struct {
	UserID      uuid.UUID
	StatementID string
	Bank        string
	Records     []statement.RawRecord
}

// Ingest runs the full pipeline for one uploaded statement. Row-level
// failures are collected into the result, never aborting the batch; an upload
// where every row fails still returns a well-formed result.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	ctx, span := tracer.Start(ctx, "statement.Ingest", trace.WithAttributes(
		attribute.String("user_id", req.UserID.String()),
		attribute.String("statement_id", req.StatementID),
		attribute.String("bank", req.Bank),
	))
	defer span.End()

	parsed, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, req.UserID, req.StatementID, req.Bank, parsed)
}

// IngestRecords runs the same pipeline over rows that were already
// extracted, skipping the file parsing step. Records without an ordinal get
// their list position.
func (s *Service) IngestRecords(ctx context.Context, req RecordsRequest) (*IngestResult, error) {
	ctx, span := tracer.Start(ctx, "statement.IngestRecords", trace.WithAttributes(
		attribute.String("user_id", req.UserID.String()),
		attribute.String("statement_id", req.StatementID),
		attribute.Int("records", len(req.Records)),
	))
	defer span.End()

	records := make([]statement.RawRecord, len(req.Records))
	copy(records, req.Records)
	for i := range records {
		if records[i].Ordinal == 0 {
			records[i].Ordinal = i
		}
	}

	parsed := &parser.ParseResult{Records: records, TotalRows: len(records)}
	return s.ingest(ctx, req.UserID, req.StatementID, req.Bank, parsed)
}

func (s *Service) ingest(ctx context.Context, userID uuid.UUID, statementID, bank string, parsed *parser.ParseResult) (*IngestResult, error) {
	profile := statement.ProfileFor(bank)
	normalizer := statement.NewNormalizer(profile, userID, statementID)
	transactions, normErrs := normalizer.NormalizeBatch(parsed.Records)

	s.classify(transactions)

	ingested, err := s.transactions.SaveBatch(ctx, transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to persist statement %s: %w", statementID, err)
	}

	months, err := s.recomputeSnapshots(ctx, userID, transactions)
	if err != nil {
		return nil, err
	}

	s.metrics.StatementIngested(profile.Name)
	s.metrics.TransactionsIngested(len(transactions))
	s.metrics.RowsRejected(len(parsed.Errors) + len(normErrs))

	s.logger.InfoContext(ctx, "statement ingested",
		slog.String("statement_id", statementID),
		slog.String("bank", profile.Name),
		slog.Int("total_rows", parsed.TotalRows),
		slog.Int("transactions", len(transactions)),
		slog.Int("parse_errors", len(parsed.Errors)),
		slog.Int("normalize_errors", len(normErrs)),
		slog.Int("months_recomputed", len(months)),
	)

	return &IngestResult{
		StatementID:      statementID,
		TotalRows:        parsed.TotalRows,
		Ingested:         ingested,
		ParseErrors:      parsed.Errors,
		NormalizeErrors:  normErrs,
		MonthsRecomputed: months,
	}, nil
}

// parse picks the parser by file extension. CSV is the default.
func (s *Service) parse(req IngestRequest) (*parser.ParseResult, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	switch ext {
	case ".xlsx", ".xls":
		result, err := parser.NewExcelParser(parser.Config{}).Parse(req.File)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", req.Filename, err)
		}
		return result, nil
	default:
		result, err := parser.NewParser(parser.Config{}).Parse(req.File)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", req.Filename, err)
		}
		return result, nil
	}
}

// classify stamps every transaction with its bucket. Classification is
// total, so every row gets one.
func (s *Service) classify(transactions []statement.Transaction) {
	keys := make([]string, len(transactions))
	for i, tx := range transactions {
		keys[i] = tx.MerchantKey
	}
	buckets := s.classifier.ClassifyBatch(keys)
	for i := range transactions {
		transactions[i].Bucket = buckets[i]
	}
}

// RecomputeMonth rebuilds one user's snapshot for a month from the stored
// transaction set. The scheduler uses it to close out the previous month.
func (s *Service) RecomputeMonth(ctx context.Context, userID uuid.UUID, month spend.MonthKey) error {
	from, to := month.Window()
	stored, err := s.transactions.ListByMonth(ctx, userID, from, to)
	if err != nil {
		return fmt.Errorf("failed to load transactions for %s: %w", month, err)
	}

	snapshot := s.aggregator.Aggregate(userID, month, stored, "statements")
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", month, err)
	}
	return nil
}

// recomputeSnapshots rebuilds the snapshot of every month the new
// transactions touch, wholesale from the stored transaction set.
func (s *Service) recomputeSnapshots(ctx context.Context, userID uuid.UUID, transactions []statement.Transaction) ([]spend.MonthKey, error) {
	months := make(map[spend.MonthKey]struct{})
	for _, tx := range transactions {
		months[spend.MonthKey(tx.Date.Format("2006-01"))] = struct{}{}
	}

	recomputed := make([]spend.MonthKey, 0, len(months))
	for month := range months {
		from, to := month.Window()
		stored, err := s.transactions.ListByMonth(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load transactions for %s: %w", month, err)
		}

		snapshot := s.aggregator.Aggregate(userID, month, stored, "statements")
		if err := s.snapshots.Save(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to save snapshot for %s: %w", month, err)
		}
		recomputed = append(recomputed, month)
	}

	sort.Slice(recomputed, func(i, j int) bool { return recomputed[i] < recomputed[j] })
	return recomputed, nil
}
