package repository

import (
	"context"
	"encoding/json"
	"time"

	"finpulse/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ReportRepository keeps insert-only snapshots of analysis runs. Reports are
// never updated in place; the latest row wins.
type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReportRepository) Create(ctx context.Context, userID string, report *models.AnalysisReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	query := squirrel.Insert("analysis_reports").
		Columns("user_id", "analyzed_at", "health_score", "report").
		Values(userID, time.Now().UTC(), report.Scores.FinancialHealthScore, payload).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReportRepository) GetLatest(ctx context.Context, userID string) (*models.AnalysisReport, error) {
	query := squirrel.Select("report").
		From("analysis_reports").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("analyzed_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var payload []byte
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&payload); err != nil {
		return nil, err
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}

	return &report, nil
}
