package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

func newTestUserService(users *fakeUserRepo, employees *fakeEmployeeRepo, issuer *fakeTokenIssuer, admins ...string) domain.UserService {
	return NewUserService(users, employees, &fakePasswordHasher{salt: "salt"}, issuer, time.Hour, admins, testLogger, testTimeout)
}

func TestUserService_SignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(*fakeUserRepo)
		wantRole string
		wantErr  error
	}{
		{name: "customer", email: "  Alice@Example.com ", password: "secret1", wantRole: domain.RoleCustomer},
		{name: "configured admin", email: "boss@example.com", password: "secret1", wantRole: domain.RoleAdmin},
		{name: "invalid email", email: "nope", password: "secret1", wantErr: domain.ErrInvalidInput},
		{name: "short password", email: "a@example.com", password: "12345", wantErr: domain.ErrInvalidInput},
		{
			name:     "duplicate email",
			email:    "taken@example.com",
			password: "secret1",
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "u-1", Email: "taken@example.com"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			if tt.setup != nil {
				tt.setup(users)
			}
			svc := newTestUserService(users, newFakeEmployeeRepo(), &fakeTokenIssuer{}, "Boss@example.com")

			user, err := svc.SignUp(ctx, tt.email, tt.password, " Alice ")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
			assert.Equal(t, "Alice", user.Name)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "hash-"+tt.password, user.PasswordHash)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	users := newFakeUserRepo()
	users.add(&domain.User{ID: "u-1", Email: "c@example.com", Role: domain.RoleCustomer, PasswordHash: "hash-secret1"})
	users.add(&domain.User{ID: "u-2", Email: "worker@example.com", Role: domain.RoleEmployee, PasswordHash: "hash-temp1234"})
	employees := newFakeEmployeeRepo()
	employees.byEmail["worker@example.com"] = &domain.Employee{ID: "e-1", UserID: "u-2", Email: "worker@example.com", InviteStatus: domain.InviteStatusPending}
	issuer := &fakeTokenIssuer{}
	svc := newTestUserService(users, employees, issuer)

	t.Run("customer", func(t *testing.T) {
		token, user, err := svc.Login(ctx, "C@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "token-u-1", token)
		assert.Equal(t, "u-1", user.ID)
		assert.Equal(t, domain.RoleCustomer, issuer.lastRole)
		assert.Empty(t, employees.loggedIn)
	})

	t.Run("employee first login is recorded", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "worker@example.com", "temp1234")
		require.NoError(t, err)
		assert.Equal(t, []string{"u-2"}, employees.loggedIn)
		e := employees.byEmail["worker@example.com"]
		assert.True(t, e.HasLoggedIn)
		assert.Equal(t, domain.InviteStatusAccepted, e.InviteStatus)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "c@example.com", "wrong!!")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@example.com", "secret1")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		id       string
		setup    func(*fakeUserRepo)
		wantUser *domain.User
		wantErr  error
	}{
		{
			name: "success",
			id:   "user-1",
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "user-1", Email: "a@b.com", Name: "Alice", CreatedAt: time.Now(), UpdatedAt: time.Now()})
			},
			wantUser: &domain.User{ID: "user-1", Email: "a@b.com", Name: "Alice"},
		},
		{
			name:    "not found",
			id:      "missing",
			setup:   func(f *fakeUserRepo) {},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:  "repo error",
			id:    "user-1",
			setup: func(f *fakeUserRepo) { f.getErr = sql.ErrConnDone },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeUserRepo()
			tt.setup(fake)
			svc := newTestUserService(fake, newFakeEmployeeRepo(), &fakeTokenIssuer{})

			user, err := svc.GetByID(ctx, tt.id)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			if tt.wantUser != nil {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.wantUser.ID, user.ID)
				assert.Equal(t, tt.wantUser.Email, user.Email)
				assert.Equal(t, tt.wantUser.Name, user.Name)
				return
			}
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrUserNotFound)
			assert.ErrorIs(t, err, sql.ErrConnDone)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		user    *domain.User
		setup   func(*fakeUserRepo)
		wantErr error
	}{
		{
			name: "success",
			user: &domain.User{ID: "user-1", Email: "a@b.com", Name: " Alice Updated "},
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "user-1", Email: "a@b.com", Name: "Alice", CreatedAt: now, UpdatedAt: now})
			},
		},
		{
			name: "duplicate email",
			user: &domain.User{ID: "user-1", Email: "other@b.com", Name: "Alice"},
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "user-1", Email: "a@b.com", Name: "Alice"})
				f.add(&domain.User{ID: "user-2", Email: "other@b.com"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
		{
			name: "invalid email format",
			user: &domain.User{ID: "user-1", Email: "not-an-email", Name: "Alice"},
			setup: func(f *fakeUserRepo) {
				f.add(&domain.User{ID: "user-1", Email: "a@b.com", Name: "Alice"})
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "not found",
			user:    &domain.User{ID: "missing", Email: "a@b.com"},
			setup:   func(f *fakeUserRepo) {},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeUserRepo()
			tt.setup(fake)
			svc := newTestUserService(fake, newFakeEmployeeRepo(), &fakeTokenIssuer{})

			err := svc.Update(ctx, tt.user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice Updated", fake.byID["user-1"].Name)
			assert.False(t, tt.user.UpdatedAt.IsZero())
		})
	}
}
