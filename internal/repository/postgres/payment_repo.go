package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventbooking/internal/domain"
)

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{DB: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, request_title, user_id, kind, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.RequestTitle, p.UserID, p.Kind, p.Amount, p.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, `
		SELECT id, request_title, user_id, kind, amount, created_at
		FROM payments
		WHERE id = $1
	`, id)
}

func (r *paymentRepository) FindByRequest(ctx context.Context, requestTitle, userID string, kind domain.PaymentKind) (*domain.Payment, error) {
	return r.getOne(ctx, `
		SELECT id, request_title, user_id, kind, amount, created_at
		FROM payments
		WHERE request_title = $1 AND user_id = $2 AND kind = $3
	`, requestTitle, userID, kind)
}

func (r *paymentRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.RequestTitle, &p.UserID, &p.Kind, &p.Amount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
