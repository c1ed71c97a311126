package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbooking/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `title, location, type, food, drinks, capacity, cost, start_date, end_date, start_time, end_time, image_base64, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.Title, &e.Location, &e.Type, &e.Food, &e.Drinks, &e.Capacity, &e.Cost,
		&e.StartDate, &e.EndDate, &e.StartTime, &e.EndTime, &e.ImageBase64, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB.ExecContext(ctx, query, e.Title, e.Location, e.Type, e.Food, e.Drinks, e.Capacity, e.Cost,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.ImageBase64, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *eventRepository) GetByTitle(ctx context.Context, title string) (*domain.Event, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE title = $1`, title)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns one page of events ordered by start date together with the total count.
func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_date, title
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Replace overwrites every field of the event named by e.Title except created_at.
func (r *eventRepository) Replace(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET location = $2, type = $3, food = $4, drinks = $5, capacity = $6, cost = $7,
			start_date = $8, end_date = $9, start_time = $10, end_time = $11, image_base64 = $12, updated_at = $13
		WHERE title = $1
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, query, e.Title, e.Location, e.Type, e.Food, e.Drinks, e.Capacity, e.Cost,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.ImageBase64, e.UpdatedAt).Scan(&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *eventRepository) Delete(ctx context.Context, title string) error {
	query := `DELETE FROM events WHERE title = $1`
	result, err := r.DB.ExecContext(ctx, query, title)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
