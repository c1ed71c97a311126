package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeService struct {
	invitation *domain.EmployeeInvitation
	inviteErr  error
	lastInvite string
	employees  []*domain.Employee
	listErr    error
}

func (f *fakeEmployeeService) Invite(ctx context.Context, email string) (*domain.EmployeeInvitation, error) {
	f.lastInvite = email
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	return f.invitation, nil
}

func (f *fakeEmployeeService) List(ctx context.Context) ([]*domain.Employee, error) {
	return f.employees, f.listErr
}

func TestEmployeeController_InviteEmployee(t *testing.T) {
	bob := &domain.Employee{ID: "emp-1", UserID: "user-2", Email: "bob@example.com", InviteStatus: domain.InviteStatusPending}

	tests := []struct {
		name          string
		body          string
		invitation    *domain.EmployeeInvitation
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
		wantEmailSent bool
	}{
		{
			name:          "invited and emailed",
			body:          `{"email":"Bob@Example.com"}`,
			invitation:    &domain.EmployeeInvitation{Employee: bob, EmailSent: true},
			wantStatus:    http.StatusCreated,
			wantEmailSent: true,
		},
		{
			name:       "invited but email failed",
			body:       `{"email":"bob@example.com"}`,
			invitation: &domain.EmployeeInvitation{Employee: bob, EmailError: "provider down"},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid email",
			body:         `{"email":"bob"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "already invited",
			body:         `{"email":"bob@example.com"}`,
			fakeErr:      domain.ErrConflict,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEmployeeService{invitation: tt.invitation, inviteErr: tt.fakeErr}
			ctrl := NewEmployeeController(testLogger(), fake)
			req := httptest.NewRequest(http.MethodPost, "http://test/employees", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.InviteEmployee(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "bob@example.com", fake.lastInvite)
				var data domain.EmployeeInvitation
				decodeData(t, envelope, &data)
				assert.Equal(t, tt.wantEmailSent, data.EmailSent)
				assert.Equal(t, tt.invitation.EmailError, data.EmailError)
				require.NotNil(t, data.Employee)
				assert.Equal(t, domain.InviteStatusPending, data.Employee.InviteStatus)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestEmployeeController_ListEmployees(t *testing.T) {
	t.Run("empty roster is an array", func(t *testing.T) {
		ctrl := NewEmployeeController(testLogger(), &fakeEmployeeService{})
		rr := httptest.NewRecorder()

		ctrl.ListEmployees(rr, httptest.NewRequest(http.MethodGet, "http://test/employees", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"data":[]`)
	})

	t.Run("service error", func(t *testing.T) {
		ctrl := NewEmployeeController(testLogger(), &fakeEmployeeService{listErr: assert.AnError})
		rr := httptest.NewRecorder()

		ctrl.ListEmployees(rr, httptest.NewRequest(http.MethodGet, "http://test/employees", nil))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
