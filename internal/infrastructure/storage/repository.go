package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
)

// Repository persists users, their queries and the results found for them.
type Repository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.Repository = (*Repository)(nil)

// NewRepository wires a sql.DB implementation using the driver's placeholder format.
func NewRepository(db *sql.DB, placeholder sq.PlaceholderFormat) *Repository {
	return &Repository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(placeholder),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// UpsertUser creates the user or refreshes their names and last activity.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) error {
	now := r.now()
	query, args, err := r.sb.Insert("users").
		Columns("user_id", "username", "first_name", "last_name", "created_at", "last_activity").
		Values(user.ID, user.Username, user.FirstName, user.LastName, now, now).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			last_activity = excluded.last_activity`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert user: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return nil
}

// RecordQuery stores a classified query and bumps the user's search count in one transaction.
func (r *Repository) RecordQuery(ctx context.Context, userID int64, text string, kind domain.IntentKind) (int64, error) {
	now := r.now()
	var id int64

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.sb.Insert("search_queries").
			Columns("user_id", "query_text", "query_type", "result_count", "created_at").
			Values(userID, text, string(kind), 0, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert query: %w", err)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("insert query: %w", err)
		}

		query, args, err = r.sb.Update("users").
			Set("search_count", sq.Expr("search_count + 1")).
			Set("last_activity", now).
			Where(sq.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build bump search count: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("bump search count: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record query: %w", err)
	}
	return id, nil
}

// RecordResult stores one successful fetch and bumps the query's result count in one transaction.
func (r *Repository) RecordResult(ctx context.Context, result domain.ResultRecord) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.sb.Insert("search_results").
			Columns("query_id", "source", "title", "summary", "url", "created_at").
			Values(result.QueryID, result.Source, result.Title, result.Summary, result.URL, r.now()).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert result: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}

		query, args, err = r.sb.Update("search_queries").
			Set("result_count", sq.Expr("result_count + 1")).
			Where(sq.Eq{"id": result.QueryID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build bump result count: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("bump result count: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("query %d not found", result.QueryID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// History returns the user's most recent queries, newest first.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]domain.QueryRecord, error) {
	builder := r.sb.Select("id", "user_id", "query_text", "query_type", "result_count", "created_at").
		From("search_queries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.QueryRecord
	for rows.Next() {
		var (
			rec  domain.QueryRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Text, &kind, &rec.ResultCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Kind = domain.IntentKind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// Stats aggregates the user's search count, queries per type and first search time.
func (r *Repository) Stats(ctx context.Context, userID int64) (domain.UserStats, error) {
	stats := domain.UserStats{ByKind: map[domain.IntentKind]int{}}

	query, args, err := r.sb.Select("search_count").From("users").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build search count: %w", err)
	}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&stats.TotalSearches)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return stats, fmt.Errorf("query search count: %w", err)
	}

	query, args, err = r.sb.Select("query_type", "COUNT(*)").
		From("search_queries").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("query_type").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build type counts: %w", err)
	}
	if err := r.scanKindCounts(ctx, query, args, stats.ByKind); err != nil {
		return stats, err
	}

	query, args, err = r.sb.Select("created_at").
		From("search_queries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build first search: %w", err)
	}
	var first time.Time
	switch err := r.db.QueryRowContext(ctx, query, args...).Scan(&first); {
	case err == nil:
		stats.FirstSearch = &first
	case !errors.Is(err, sql.ErrNoRows):
		return stats, fmt.Errorf("query first search: %w", err)
	}

	return stats, nil
}

func (r *Repository) scanKindCounts(ctx context.Context, query string, args []any, into map[domain.IntentKind]int) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return fmt.Errorf("scan type count: %w", err)
		}
		into[domain.IntentKind(kind)] = count
	}
	return rows.Err()
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
