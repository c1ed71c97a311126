package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbooking/internal/domain"
)

type employeeRepository struct {
	DB *sql.DB
}

func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{DB: db}
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (user_id, email, invite_status, has_logged_in, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, e.UserID, e.Email, e.InviteStatus, e.HasLoggedIn, e.CreatedAt).Scan(&e.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `
		SELECT id, user_id, email, invite_status, has_logged_in, created_at
		FROM employees
		WHERE email = $1
	`
	e := &domain.Employee{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&e.ID, &e.UserID, &e.Email, &e.InviteStatus, &e.HasLoggedIn, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, user_id, email, invite_status, has_logged_in, created_at
		FROM employees
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*domain.Employee, 0)
	for rows.Next() {
		e := &domain.Employee{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Email, &e.InviteStatus, &e.HasLoggedIn, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkLoggedIn records the first login of the employee owning userID. Users without an
// employee row are ignored.
func (r *employeeRepository) MarkLoggedIn(ctx context.Context, userID string) error {
	query := `
		UPDATE employees SET has_logged_in = TRUE, invite_status = $2
		WHERE user_id = $1 AND has_logged_in = FALSE
	`
	_, err := r.DB.ExecContext(ctx, query, userID, domain.InviteStatusAccepted)
	return err
}
