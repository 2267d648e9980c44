package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/tally/pkg/storage"
)

const (
	insertReportRecord = `INSERT INTO statistics_reports (subject_id, url, generated_at)
		VALUES ($1, $2, $3) RETURNING id`
	selectLatestReportRecord = `SELECT id, subject_id, url, generated_at FROM statistics_reports
		WHERE subject_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1`
)

// ReportStore implements storage.ReportRecordStore.
// Writes go to the primary and reads go to the primary as well so a
// download right after generation sees the new record.
type ReportStore struct {
	conns *ConnectionManager
}

// NewReportStore creates a report record store
func NewReportStore(conns *ConnectionManager) *ReportStore {
	return &ReportStore{conns: conns}
}

// SaveReportRecord inserts the record and sets its ID
func (s *ReportStore) SaveReportRecord(ctx context.Context, record *storage.ReportRecord) error {
	ctx, span := tracer.Start(ctx, "ReportStore.SaveReportRecord",
		trace.WithAttributes(
			attribute.Int64("subject.id", record.SubjectID),
			attribute.String("db.operation", "INSERT"),
		),
	)
	defer span.End()

	err := s.conns.Primary().QueryRowContext(ctx, insertReportRecord,
		record.SubjectID, record.URL, record.GeneratedAt.UTC(),
	).Scan(&record.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to save report record: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// LatestReportRecord returns the newest record for a subject
func (s *ReportStore) LatestReportRecord(ctx context.Context, subjectID int64) (*storage.ReportRecord, error) {
	ctx, span := tracer.Start(ctx, "ReportStore.LatestReportRecord",
		trace.WithAttributes(attribute.Int64("subject.id", subjectID)),
	)
	defer span.End()

	var record storage.ReportRecord
	err := s.conns.Primary().QueryRowContext(ctx, selectLatestReportRecord, subjectID).Scan(
		&record.ID, &record.SubjectID, &record.URL, &record.GeneratedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoReport
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to load report record: %w", err)
	}
	return &record, nil
}
