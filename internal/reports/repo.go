package reports

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/telemetry/tracing"
	"github.com/2beens/formcheck/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExists   = errors.New("report already exists")
)

// Schema creates the reports table when missing.
//
//go:embed schema.sql
var Schema string

// Overview is a report listing row, without the frame records.
type Overview struct {
	ID               string        `json:"id"`
	ExerciseType     exercise.Type `json:"exercise_type"`
	Status           batch.Status  `json:"status"`
	OverallFormScore float64       `json:"overall_form_score"`
	RepCount         int           `json:"rep_count"`
	TotalFrames      int           `json:"total_frames"`
	CreatedAt        time.Time     `json:"created_at"`
}

var _ reportsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create reports schema: %w", err)
	}
	return nil
}

func (r *Repo) Add(ctx context.Context, report *batch.Report) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.reports.add")
	defer span.End()

	reportJson, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO formcheck_report (id, exercise_type, status, overall_form_score, rep_count, total_frames, created_at, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		report.ID,
		string(report.ExerciseType),
		string(report.Status),
		report.OverallFormScore,
		report.RepCount,
		report.TotalFrames,
		report.CreatedAt,
		reportJson,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrReportExists
		}
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*batch.Report, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.reports.get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	var reportJson []byte
	err := r.db.QueryRow(ctx, `SELECT report FROM formcheck_report WHERE id = $1`, id).Scan(&reportJson)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	var report batch.Report
	if err := json.Unmarshal(reportJson, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	return &report, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM formcheck_report WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.reports.count")
	defer span.End()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM formcheck_report`).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

// Page returns report overviews, newest first. Pages start at 1.
func (r *Repo) Page(ctx context.Context, page, size int) ([]Overview, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.reports.page")
	span.SetAttributes(attribute.Int("page", page))
	span.SetAttributes(attribute.Int("size", size))
	defer span.End()

	limit := size
	offset := (page - 1) * size

	log.Tracef("getting reports, limit %d, offset %d", limit, offset)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, exercise_type, status, overall_form_score, rep_count, total_frames, created_at
			FROM formcheck_report
			ORDER BY created_at DESC, id
			LIMIT $1
			OFFSET $2;
		`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overviews := make([]Overview, 0, size)
	for rows.Next() {
		var (
			o            Overview
			exerciseType string
			status       string
		)
		if err := rows.Scan(&o.ID, &exerciseType, &status, &o.OverallFormScore, &o.RepCount, &o.TotalFrames, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report overview: %w", err)
		}
		o.ExerciseType = exercise.Type(exerciseType)
		o.Status = batch.Status(status)
		overviews = append(overviews, o)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return overviews, nil
}
