package database

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/searchpulse/internal/domain/entities"
	"github.com/zatekoja/searchpulse/internal/domain/repositories"
	"github.com/zatekoja/searchpulse/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/searchpulse/pkg/errors"
)

const searchLogsTable = "search_logs"

// SearchEventAdapter implements search event persistence in Postgres.
type SearchEventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchEventAdapter creates a new search event adapter.
func NewSearchEventAdapter(client *postgres.Client) repositories.SearchEventRepository {
	return &SearchEventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a search event record.
func (a *SearchEventAdapter) Create(ctx context.Context, event *entities.SearchEvent) error {
	record := goqu.Record{
		"id":                 event.ID,
		"term":               event.Term,
		"search_type":        int(event.SearchType),
		"ip_address":         nullString(event.IPAddress),
		"user_agent":         nullString(event.UserAgent),
		"user_id":            nullString(event.UserID),
		"search_result_id":   nullString(event.SearchResultID),
		"search_result_type": nullInt(int(event.SearchResultType)),
		"created_at":         event.CreatedAt,
	}

	query, args, err := a.db.Insert(searchLogsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search event insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.NewConflictError("search event id already exists")
		}
		return apperrors.NewUnavailableError("failed to create search event", err)
	}
	return nil
}

// GetByID retrieves a search event by id.
func (a *SearchEventAdapter) GetByID(ctx context.Context, id string) (*entities.SearchEvent, error) {
	query, args, err := a.db.From(searchLogsTable).
		Select("id", "term", "search_type", "ip_address", "user_agent", "user_id",
			"search_result_id", "search_result_type", "created_at").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search event select query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)

	var (
		event          entities.SearchEvent
		searchType     int
		ipAddress      sql.NullString
		userAgent      sql.NullString
		userID         sql.NullString
		searchResultID sql.NullString
		resultType     sql.NullInt64
	)
	err = row.Scan(&event.ID, &event.Term, &searchType, &ipAddress, &userAgent,
		&userID, &searchResultID, &resultType, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("search event not found")
	}
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to get search event", err)
	}

	event.SearchType = entities.SearchType(searchType)
	event.IPAddress = ipAddress.String
	event.UserAgent = userAgent.String
	event.UserID = userID.String
	event.SearchResultID = searchResultID.String
	event.SearchResultType = entities.SearchResultType(resultType.Int64)
	return &event, nil
}

// Update overwrites the mutable fields of an existing event.
func (a *SearchEventAdapter) Update(ctx context.Context, event *entities.SearchEvent) error {
	query, args, err := a.db.Update(searchLogsTable).
		Set(goqu.Record{
			"term":        event.Term,
			"search_type": int(event.SearchType),
			"user_agent":  nullString(event.UserAgent),
		}).
		Where(goqu.Ex{"id": event.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search event update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewUnavailableError("failed to update search event", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("search event not found")
	}
	return nil
}

// SetSearchResult records a click-through on an existing event.
func (a *SearchEventAdapter) SetSearchResult(ctx context.Context, id string, resultType entities.SearchResultType, resultID string) error {
	query, args, err := a.db.Update(searchLogsTable).
		Set(goqu.Record{
			"search_result_id":   nullString(resultID),
			"search_result_type": nullInt(int(resultType)),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build search result update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewUnavailableError("failed to set search result", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("search event not found")
	}
	return nil
}

// Count returns the number of stored search events.
func (a *SearchEventAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	err := a.client.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM search_logs").Scan(&count)
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to count search events", err)
	}
	return count, nil
}

// DeleteOldest removes the n oldest events by created_at, id as tie-break.
func (a *SearchEventAdapter) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	query := `
		DELETE FROM search_logs
		WHERE id IN (
			SELECT id FROM search_logs
			ORDER BY created_at ASC, id ASC
			LIMIT $1
		)
	`
	result, err := a.client.DB().ExecContext(ctx, query, n)
	if err != nil {
		return 0, apperrors.NewUnavailableError("failed to delete oldest search events", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read deleted row count", err)
	}
	return deleted, nil
}

// TermBuckets returns per-day counts for a term, matched case-insensitively.
func (a *SearchEventAdapter) TermBuckets(ctx context.Context, term string, since *time.Time, filter entities.TermFilter) ([]entities.DateCount, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT created_at::date AS day, COUNT(*) AS searches
		FROM search_logs
		WHERE lower(term) = lower($1)
	`)
	args := []interface{}{term}

	if since != nil {
		args = append(args, *since)
		sb.WriteString(" AND created_at >= ")
		sb.WriteString(placeholder(len(args)))
	}
	if filter.SearchType != nil {
		args = append(args, int(*filter.SearchType))
		sb.WriteString(" AND search_type = ")
		sb.WriteString(placeholder(len(args)))
	}
	if filter.ClickThroughOnly {
		sb.WriteString(" AND search_result_id IS NOT NULL")
	}
	sb.WriteString(" GROUP BY day ORDER BY day ASC")

	rows, err := a.client.DB().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to query term buckets", err)
	}
	defer rows.Close()

	var buckets []entities.DateCount
	for rows.Next() {
		var bucket entities.DateCount
		if err := rows.Scan(&bucket.X, &bucket.Y); err != nil {
			return nil, apperrors.NewInternalError("failed to scan term bucket", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUnavailableError("failed to iterate term buckets", err)
	}
	return buckets, nil
}

// Trending returns per-term totals ordered by search count descending.
func (a *SearchEventAdapter) Trending(ctx context.Context, since *time.Time, limit int) ([]entities.TrendingTerm, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT lower(term) AS term,
		       COUNT(*) AS searches,
		       COUNT(search_result_id) AS click_through
		FROM search_logs
	`)
	var args []interface{}
	if since != nil {
		args = append(args, *since)
		sb.WriteString(" WHERE created_at >= $1")
	}
	sb.WriteString(" GROUP BY lower(term) ORDER BY searches DESC, term ASC")
	args = append(args, limit)
	sb.WriteString(" LIMIT ")
	sb.WriteString(placeholder(len(args)))

	rows, err := a.client.DB().QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperrors.NewUnavailableError("failed to query trending terms", err)
	}
	defer rows.Close()

	var trending []entities.TrendingTerm
	for rows.Next() {
		var row entities.TrendingTerm
		if err := rows.Scan(&row.Term, &row.Searches, &row.ClickThrough); err != nil {
			return nil, apperrors.NewInternalError("failed to scan trending term", err)
		}
		trending = append(trending, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUnavailableError("failed to iterate trending terms", err)
	}
	return trending, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
