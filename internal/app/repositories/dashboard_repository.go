package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azechum30/npresec-app/internal/app/models/dto"
	"github.com/Azechum30/npresec-app/internal/db"
)

// DashboardRepository computes the dashboard counters
type DashboardRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(q db.DBTX) *DashboardRepository {
	return &DashboardRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type statusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// Stats counts every admin module in two round trips
func (r *DashboardRepository) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	sql, args, err := r.sb.Select(
		"(SELECT COUNT(*) FROM teachers)",
		"(SELECT COUNT(*) FROM staff)",
		"(SELECT COUNT(*) FROM classes)",
		"(SELECT COUNT(*) FROM courses)",
		"(SELECT COUNT(*) FROM departments)",
		"(SELECT COUNT(*) FROM users)",
	).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard query: %w", err)
	}

	stats := &dto.DashboardStats{StudentsByStatus: map[string]int64{}}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(
		&stats.Teachers, &stats.Staff, &stats.Classes, &stats.Courses, &stats.Departments, &stats.Users,
	); err != nil {
		return nil, fmt.Errorf("failed to read dashboard counts: %w", err)
	}

	sql, args, err = r.sb.Select("status", "COUNT(*) AS count").From("students").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student status query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByName[statusCount])
	if err != nil {
		return nil, fmt.Errorf("failed to scan student counts: %w", err)
	}

	for _, c := range counts {
		stats.StudentsByStatus[c.Status] = c.Count
		stats.Students += c.Count
	}
	return stats, nil
}
