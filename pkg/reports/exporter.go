package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/storage"
)

const htmlContentType = "text/html; charset=utf-8"

// ActivitySource produces user activity reports
type ActivitySource interface {
	UserActivity(ctx context.Context, caller analytics.Caller, req analytics.UserActivityRequest) (*analytics.ActivityReport, error)
}

// Exporter generates report artifacts and tracks the latest one per user
type Exporter struct {
	source    ActivitySource
	renderer  *HTMLRenderer
	artifacts storage.ArtifactStore
	records   storage.ReportRecordStore
	logger    *logrus.Logger
	now       func() time.Time
	observe   func(error)
}

// NewExporter creates a new exporter
func NewExporter(source ActivitySource, artifacts storage.ArtifactStore, records storage.ReportRecordStore, logger *logrus.Logger) *Exporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Exporter{
		source:    source,
		renderer:  NewHTMLRenderer(),
		artifacts: artifacts,
		records:   records,
		logger:    logger,
		now:       time.Now,
		observe:   func(error) {},
	}
}

// WithClock replaces the generation timestamp source
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// WithObserver registers a callback invoked with the outcome of every Generate call
func (e *Exporter) WithObserver(observe func(error)) *Exporter {
	if observe != nil {
		e.observe = observe
	}
	return e
}

// GenerateRequest selects the report to export. A nil TargetUserID exports
// the caller's own activity.
type GenerateRequest struct {
	TargetUserID *int64
	Period       analytics.Period
	Interval     analytics.Interval
}

// Generate renders a user activity report, uploads it and records its URL
func (e *Exporter) Generate(ctx context.Context, caller analytics.Caller, req GenerateRequest) (record *storage.ReportRecord, err error) {
	defer func() { e.observe(err) }()

	report, err := e.source.UserActivity(ctx, caller, analytics.UserActivityRequest{
		UserID:   req.TargetUserID,
		Period:   req.Period,
		Interval: req.Interval,
	})
	if err != nil {
		return nil, err
	}

	generatedAt := e.now().UTC()
	content, err := e.renderer.Render(report, generatedAt)
	if err != nil {
		return nil, analytics.NewInternalError("render report", err)
	}

	subjectID := *report.SubjectID
	key := fmt.Sprintf("reports/%d/%s.html", subjectID, uuid.NewString())
	url, err := e.artifacts.PutArtifact(ctx, key, content, htmlContentType)
	if err != nil {
		return nil, analytics.NewInternalError("store report", err)
	}

	record = &storage.ReportRecord{
		SubjectID:   subjectID,
		URL:         url,
		GeneratedAt: generatedAt,
	}
	if err := e.records.SaveReportRecord(ctx, record); err != nil {
		return nil, analytics.NewInternalError("save report record", err)
	}

	e.logger.WithFields(logrus.Fields{
		"subject_id": subjectID,
		"caller_id":  caller.ID,
		"period":     req.Period,
		"interval":   req.Interval,
		"url":        url,
	}).Info("report generated")

	return record, nil
}

// Latest returns the newest report record for the target user, or the caller
// when target is nil. Access rules match the user statistics endpoint.
func (e *Exporter) Latest(ctx context.Context, caller analytics.Caller, target *int64) (*storage.ReportRecord, error) {
	subjectID, err := analytics.UserScope(caller, target)
	if err != nil {
		return nil, err
	}

	record, err := e.records.LatestReportRecord(ctx, subjectID)
	if errors.Is(err, storage.ErrNoReport) {
		return nil, fmt.Errorf("%w: no report for user %d", analytics.ErrNotFound, subjectID)
	}
	if err != nil {
		return nil, analytics.NewInternalError("load report record", err)
	}
	return record, nil
}
