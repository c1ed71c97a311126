package controllers

import (
	"log/slog"
	"net/http"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

// InviteEmployeeRequest is the request body for POST /employees.
type InviteEmployeeRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (i InviteEmployeeRequest) Validate() []string {
	email := normalizeEmail(i.Email)
	if email == "" {
		return []string{"email is required"}
	}
	if !emailRegexp.MatchString(email) {
		return []string{"invalid email format"}
	}
	return nil
}

// InviteEmployeeSuccessResponse is the success response envelope for POST /employees (201).
type InviteEmployeeSuccessResponse struct {
	Data  *domain.EmployeeInvitation `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// ListEmployeesSuccessResponse is the success response envelope for GET /employees (200).
type ListEmployeesSuccessResponse struct {
	Data  []*domain.Employee `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EmployeeController struct {
	Logger  *slog.Logger
	Service domain.EmployeeService
}

func NewEmployeeController(logger *slog.Logger, svc domain.EmployeeService) *EmployeeController {
	return &EmployeeController{
		Logger:  logger,
		Service: svc,
	}
}

// InviteEmployee godoc
// @Summary Invite an employee
// @Description Create an employee account with a generated password and email the credentials. The account is kept when the email fails; email_sent and email_error report the outcome. Admin only.
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InviteEmployeeRequest true "Employee email"
// @Success 201 {object} controllers.InviteEmployeeSuccessResponse "data contains the employee and email outcome"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already invited or email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /employees [post]
func (c *EmployeeController) InviteEmployee(w http.ResponseWriter, r *http.Request) {
	var req InviteEmployeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	invitation, err := c.Service.Invite(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if !invitation.EmailSent {
		c.Logger.WarnContext(r.Context(), "employee invite email not sent", "email", invitation.Employee.Email, "reason", invitation.EmailError)
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, invitation)
}

// ListEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEmployeesSuccessResponse "data is the list of employees"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /employees [get]
func (c *EmployeeController) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := c.Service.List(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if employees == nil {
		employees = []*domain.Employee{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, employees)
}
