package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventbooking/internal/booking"
	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// CreateBookingRequest is the request body for POST /events/{title}/requests.
// Omitted fields keep the event's values.
type CreateBookingRequest struct {
	ReceiptID string  `json:"receipt_id"`
	Food      *string `json:"food"`
	Drinks    *string `json:"drinks"`
	Capacity  *int    `json:"capacity"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// Validate implements Validator.
func (c CreateBookingRequest) Validate() []string {
	var errs []string
	if c.Capacity != nil && *c.Capacity <= 0 {
		errs = append(errs, "capacity must be a positive number")
	}
	return errs
}

func (c CreateBookingRequest) overrides() domain.BookingOverrides {
	return domain.BookingOverrides{
		Food:      c.Food,
		Drinks:    c.Drinks,
		Capacity:  c.Capacity,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
	}
}

// AcceptRequestBody is the request body for POST /requests/{title}/accept.
type AcceptRequestBody struct {
	EmployeeEmail string `json:"employee_email"`
}

// Validate implements Validator.
func (a AcceptRequestBody) Validate() []string {
	if strings.TrimSpace(a.EmployeeEmail) == "" {
		return []string{"employee_email is required"}
	}
	return nil
}

// SetProgressRequest is the request body for PATCH /requests/{title}/progress/{field}.
type SetProgressRequest struct {
	Completed *bool `json:"completed"`
}

// Validate implements Validator.
func (s SetProgressRequest) Validate() []string {
	if s.Completed == nil {
		return []string{"completed is required"}
	}
	return nil
}

// TokenPaymentResponse is the data payload for POST /events/{title}/token-payments.
// ReceiptID is passed back when creating the request.
type TokenPaymentResponse struct {
	ReceiptID string          `json:"receipt_id"`
	Amount    string          `json:"amount"`
	Payment   *domain.Payment `json:"payment"`
}

// PayResponse is the data payload for POST /requests/{title}/payments.
// Charged is false when the request had already been paid.
type PayResponse struct {
	Request *domain.RequestView `json:"request"`
	Charged bool                `json:"charged"`
}

// ListRequestsResponse is the data payload for GET /requests.
type ListRequestsResponse struct {
	Items      []*domain.RequestView  `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// RequestSuccessResponse is the success response envelope for endpoints returning one request.
type RequestSuccessResponse struct {
	Data  *domain.RequestView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// RequestListSuccessResponse is the success response envelope for unpaginated request lists.
type RequestListSuccessResponse struct {
	Data  []*domain.RequestView `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListRequestsSuccessResponse is the success response envelope for GET /requests (200).
type ListRequestsSuccessResponse struct {
	Data  ListRequestsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// TokenPaymentSuccessResponse is the success response envelope for the token payment (201).
type TokenPaymentSuccessResponse struct {
	Data  TokenPaymentResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// PaySuccessResponse is the success response envelope for POST /requests/{title}/payments (200).
type PaySuccessResponse struct {
	Data  PayResponse       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestController serves booking requests for customers, employees and admins.
type RequestController struct {
	Logger  *slog.Logger
	Service domain.RequestService
}

func NewRequestController(logger *slog.Logger, svc domain.RequestService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// caller returns the authenticated principal or writes 401.
func caller(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return p, ok
}

func pathTitle(w http.ResponseWriter, r *http.Request) (string, bool) {
	title := r.PathValue("title")
	if title == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing title")
		return "", false
	}
	return title, true
}

func views(requests []*booking.Request) []*domain.RequestView {
	out := make([]*domain.RequestView, 0, len(requests))
	for _, r := range requests {
		out = append(out, domain.NewRequestView(r))
	}
	return out
}

// PayToken godoc
// @Summary Pay the booking token
// @Description Charge the 10% token for booking the event. Paying again for the same event returns the existing receipt. Customer only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param title path string true "Event title"
// @Success 201 {object} controllers.TokenPaymentSuccessResponse "data contains receipt_id and amount"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid cost)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{title}/token-payments [post]
func (c *RequestController) PayToken(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	payment, err := c.Service.PayToken(r.Context(), title, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, TokenPaymentResponse{
		ReceiptID: payment.ID,
		Amount:    payment.Amount.StringFixed(2),
		Payment:   payment,
	})
}

// CreateRequest godoc
// @Summary Book an event
// @Description Create a booking request from the event, applying the optional overrides. The token must have been paid first. Customer only.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title path string true "Event title"
// @Param body body CreateBookingRequest true "Token receipt and overrides"
// @Success 201 {object} controllers.RequestSuccessResponse "data contains the created request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already requested)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{title}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	created, err := c.Service.CreateRequest(r.Context(), title, req.overrides(), req.ReceiptID, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, domain.NewRequestView(created))
}

// ListMyRequests godoc
// @Summary List my requests
// @Description Returns the caller's booking requests with their overall progress. Customer only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RequestListSuccessResponse "data is the list of requests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/mine [get]
func (c *RequestController) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := c.Service.ListMyRequests(r.Context(), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views(list))
}

// Pay godoc
// @Summary Pay for a request
// @Description Settle the request cost. A second call changes nothing and returns charged=false. Owner only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Success 200 {object} controllers.PaySuccessResponse "data contains the request and charged"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid cost)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title}/payments [post]
func (c *RequestController) Pay(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	paid, charged, err := c.Service.Pay(r.Context(), title, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PayResponse{Request: domain.NewRequestView(paid), Charged: charged})
}

// ListRequests godoc
// @Summary List all requests
// @Description Returns a paginated list of every booking request, newest first. Admin only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRequestsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests [get]
func (c *RequestController) ListRequests(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListRequests(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRequestsResponse{Items: views(list), Pagination: meta})
}

// ListAssignedRequests godoc
// @Summary List requests assigned to me
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RequestListSuccessResponse "data is the list of requests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/assigned [get]
func (c *RequestController) ListAssignedRequests(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := c.Service.ListAssignedRequests(r.Context(), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views(list))
}

// GetRequest godoc
// @Summary Get a request
// @Description Customers may only read their own requests.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title} [get]
func (c *RequestController) GetRequest(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	found, err := c.Service.GetRequest(r.Context(), title, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewRequestView(found))
}

// Accept godoc
// @Summary Accept a request
// @Description Accept a pending request and assign it to an employee. Admin only.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Param body body AcceptRequestBody true "Assigned employee"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the accepted request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (request or employee)"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title}/accept [post]
func (c *RequestController) Accept(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	var req AcceptRequestBody
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	updated, err := c.Service.Accept(r.Context(), title, normalizeEmail(req.EmployeeEmail))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewRequestView(updated))
}

// Reject godoc
// @Summary Reject a request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the rejected request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title}/reject [post]
func (c *RequestController) Reject(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	updated, err := c.Service.Reject(r.Context(), title)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewRequestView(updated))
}

// Complete godoc
// @Summary Complete a request
// @Description Mark an accepted, paid request complete. Admin only.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the completed request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition or payment_required"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title}/complete [post]
func (c *RequestController) Complete(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	updated, err := c.Service.Complete(r.Context(), title)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewRequestView(updated))
}

// SetProgress godoc
// @Summary Toggle a sub-task
// @Description Mark one of food, drinks, capacity or location completed or not. Only the assigned employee or an admin may change progress.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param title path string true "Request title"
// @Param field path string true "Sub-task" Enums(food, drinks, capacity, location)
// @Param body body SetProgressRequest true "Completion flag"
// @Success 200 {object} controllers.RequestSuccessResponse "data contains the updated request"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{title}/progress/{field} [patch]
func (c *RequestController) SetProgress(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	task, err := booking.ParseSubTask(r.PathValue("field"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "field must be one of food, drinks, capacity, location")
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	var req SetProgressRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	updated, err := c.Service.SetSubStatus(r.Context(), title, task, *req.Completed, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, domain.NewRequestView(updated))
}
