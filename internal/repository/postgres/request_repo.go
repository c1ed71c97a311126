package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventbooking/internal/booking"
	"eventbooking/internal/domain"
)

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{DB: db}
}

const requestColumns = `title, location, type, food, drinks, capacity, cost, token_payment, token_paid, assigned_to,
	status, cost_status, food_status, drinks_status, capacity_status, location_status, user_id,
	start_date, end_date, start_time, end_time, image_base64, created_at, updated_at`

// subStatusColumns maps a sub-task to its column. Only these names are ever interpolated into SQL.
var subStatusColumns = map[booking.SubTask]string{
	booking.SubTaskFood:     "food_status",
	booking.SubTaskDrinks:   "drinks_status",
	booking.SubTaskCapacity: "capacity_status",
	booking.SubTaskLocation: "location_status",
}

func scanRequest(row rowScanner) (*booking.Request, error) {
	r := &booking.Request{}
	err := row.Scan(&r.Title, &r.Location, &r.Type, &r.Food, &r.Drinks, &r.Capacity, &r.Cost, &r.TokenPayment, &r.TokenPaid, &r.AssignedTo,
		&r.Status, &r.CostStatus, &r.Progress.Food, &r.Progress.Drinks, &r.Progress.Capacity, &r.Progress.Location, &r.UserID,
		&r.StartDate, &r.EndDate, &r.StartTime, &r.EndTime, &r.ImageBase64, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (repo *requestRepository) Create(ctx context.Context, r *booking.Request) error {
	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`
	_, err := repo.DB.ExecContext(ctx, query, r.Title, r.Location, r.Type, r.Food, r.Drinks, r.Capacity, r.Cost, r.TokenPayment, r.TokenPaid, r.AssignedTo,
		r.Status, r.CostStatus, r.Progress.Food, r.Progress.Drinks, r.Progress.Capacity, r.Progress.Location, r.UserID,
		r.StartDate, r.EndDate, r.StartTime, r.EndTime, r.ImageBase64, r.CreatedAt, r.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (repo *requestRepository) GetByTitle(ctx context.Context, title string) (*booking.Request, error) {
	row := repo.DB.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE title = $1`, title)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (repo *requestRepository) List(ctx context.Context, params domain.PaginationParams) ([]*booking.Request, int, error) {
	var total int
	if err := repo.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + requestColumns + ` FROM requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	list, err := repo.query(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (repo *requestRepository) ListByUserID(ctx context.Context, userID string) ([]*booking.Request, error) {
	return repo.query(ctx, `SELECT `+requestColumns+` FROM requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (repo *requestRepository) ListByAssignee(ctx context.Context, email string) ([]*booking.Request, error) {
	return repo.query(ctx, `SELECT `+requestColumns+` FROM requests WHERE assigned_to = $1 ORDER BY created_at DESC`, email)
}

func (repo *requestRepository) query(ctx context.Context, query string, args ...any) ([]*booking.Request, error) {
	rows, err := repo.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*booking.Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// UpdateStatus writes status and assigned_to only, so a concurrent sub-status or payment
// write is never overwritten. The row must still hold status from; a request moved on by
// another writer yields a TransitionError from its current status.
func (repo *requestRepository) UpdateStatus(ctx context.Context, r *booking.Request, from booking.Status) error {
	result, err := repo.DB.ExecContext(ctx,
		`UPDATE requests SET status = $2, assigned_to = $3, updated_at = $4 WHERE title = $1 AND status = $5`,
		r.Title, r.Status, r.AssignedTo, r.UpdatedAt, from)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}

	var current booking.Status
	err = repo.DB.QueryRowContext(ctx, `SELECT status FROM requests WHERE title = $1`, r.Title).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &booking.TransitionError{From: current, To: r.Status}
}

func (repo *requestRepository) UpdateCostStatus(ctx context.Context, r *booking.Request) error {
	return repo.exec(ctx, `UPDATE requests SET cost_status = $2, updated_at = $3 WHERE title = $1`,
		r.Title, r.CostStatus, r.UpdatedAt)
}

func (repo *requestRepository) UpdateSubStatus(ctx context.Context, title string, task booking.SubTask, status booking.SubStatus) error {
	col, ok := subStatusColumns[task]
	if !ok {
		return booking.ErrUnknownSubTask
	}
	query := fmt.Sprintf(`UPDATE requests SET %s = $2, updated_at = NOW() WHERE title = $1`, col)
	return repo.exec(ctx, query, title, status)
}

func (repo *requestRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := repo.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
