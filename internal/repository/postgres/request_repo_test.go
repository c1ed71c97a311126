package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/booking"
	"eventbooking/internal/domain"
)

var requestCols = []string{"title", "location", "type", "food", "drinks", "capacity", "cost", "token_payment", "token_paid", "assigned_to",
	"status", "cost_status", "food_status", "drinks_status", "capacity_status", "location_status", "user_id",
	"start_date", "end_date", "start_time", "end_time", "image_base64", "created_at", "updated_at"}

func requestRow(rows *sqlmock.Rows, now time.Time, status string, assignee string) *sqlmock.Rows {
	return rows.AddRow("Gala", "Hall", "Formal", "Buffet", "Wine", 100, 1000.0, 100.0, true, assignee,
		status, "", "completed", "", "", "", "user-1",
		"2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-01T18:00:00Z", "2025-06-01T23:00:00Z", "", now, now)
}

func TestRequestRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &booking.Request{Title: "Gala", Status: booking.StatusPending, UserID: "user-1", TokenPaid: true, TokenPayment: 100, CreatedAt: now, UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO requests`).WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, NewRequestRepository(db).Create(ctx, r))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate title", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`INSERT INTO requests`).WillReturnError(&pq.Error{Code: "23505"})
		require.ErrorIs(t, NewRequestRepository(db).Create(ctx, r), domain.ErrConflict)
	})
}

func TestRequestRepository_GetByTitle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM requests WHERE title = \$1`).
		WithArgs("Gala").
		WillReturnRows(requestRow(sqlmock.NewRows(requestCols), now, "accepted", "worker@example.com"))
	mock.ExpectQuery(`SELECT .+ FROM requests WHERE title = \$1`).
		WithArgs("Missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewRequestRepository(db)
	r, err := repo.GetByTitle(ctx, "Gala")
	require.NoError(t, err)
	require.Equal(t, booking.StatusAccepted, r.Status)
	require.Equal(t, "worker@example.com", r.AssignedTo)
	require.Equal(t, booking.SubStatusCompleted, r.Progress.Food)
	require.Equal(t, booking.SubStatusUnset, r.Progress.Drinks)

	_, err = repo.GetByTitle(ctx, "Missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListByAssignee(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM requests WHERE assigned_to = \$1`).
		WithArgs("worker@example.com").
		WillReturnRows(requestRow(sqlmock.NewRows(requestCols), now, "accepted", "worker@example.com"))

	list, err := NewRequestRepository(db).ListByAssignee(ctx, "worker@example.com")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_List(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM requests`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM requests ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(requestCols))

	list, total, err := NewRequestRepository(db).List(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 0, total)
	require.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &booking.Request{Title: "Gala", Status: booking.StatusAccepted, AssignedTo: "worker@example.com", UpdatedAt: now}
	const update = `UPDATE requests SET status = \$2, assigned_to = \$3, updated_at = \$4 WHERE title = \$1 AND status = \$5`

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "updated",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).
					WithArgs("Gala", booking.StatusAccepted, "worker@example.com", now, booking.StatusPending).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "moved on by another writer",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).
					WithArgs("Gala", booking.StatusAccepted, "worker@example.com", now, booking.StatusPending).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status FROM requests WHERE title = \$1`).
					WithArgs("Gala").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rejected"))
			},
			wantErr: booking.ErrInvalidTransition,
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).
					WithArgs("Gala", booking.StatusAccepted, "worker@example.com", now, booking.StatusPending).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT status FROM requests WHERE title = \$1`).
					WithArgs("Gala").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mock(mock)

			err = NewRequestRepository(db).UpdateStatus(ctx, r, booking.StatusPending)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRequestRepository_UpdateCostStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE requests SET cost_status = \$2`).
		WithArgs("Gala", booking.CostPaid, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRequestRepository(db).UpdateCostStatus(ctx, &booking.Request{Title: "Gala", CostStatus: booking.CostPaid, UpdatedAt: now})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_UpdateSubStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		task    booking.SubTask
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "drinks",
			task: booking.SubTaskDrinks,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE requests SET drinks_status = \$2`).
					WithArgs("Gala", booking.SubStatusCompleted).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "unknown task never reaches the database",
			task:    booking.SubTask("music"),
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: booking.ErrUnknownSubTask,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewRequestRepository(db).UpdateSubStatus(ctx, "Gala", tt.task, booking.SubStatusCompleted)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
