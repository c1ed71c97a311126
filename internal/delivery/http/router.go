package http

import (
	"log/slog"
	"net/http"

	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the API controllers mounted by NewRouter.
type Controllers struct {
	User     *controllers.UserController
	Event    *controllers.EventController
	Request  *controllers.RequestController
	Employee *controllers.EmployeeController
	Live     *controllers.LiveController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(verifier, logger)
	role := func(next http.HandlerFunc, roles ...string) http.HandlerFunc {
		return authed(middleware.RequireRole(roles...)(next))
	}
	admin := func(next http.HandlerFunc) http.HandlerFunc { return role(next, domain.RoleAdmin) }
	customer := func(next http.HandlerFunc) http.HandlerFunc { return role(next, domain.RoleCustomer) }

	// Auth
	mux.HandleFunc("POST /auth/signup", c.User.SignUp)
	mux.HandleFunc("POST /auth/login", c.User.Login)

	// Users
	mux.HandleFunc("GET /users/me", authed(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", authed(c.User.UpdateMe))

	// Events
	mux.HandleFunc("GET /events", authed(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{title}", authed(c.Event.GetEvent))
	mux.HandleFunc("POST /events", admin(c.Event.CreateEvent))
	mux.HandleFunc("PUT /events/{title}", admin(c.Event.ReplaceEvent))
	mux.HandleFunc("DELETE /events/{title}", admin(c.Event.DeleteEvent))

	// Booking requests
	mux.HandleFunc("POST /events/{title}/token-payments", customer(c.Request.PayToken))
	mux.HandleFunc("POST /events/{title}/requests", customer(c.Request.CreateRequest))
	mux.HandleFunc("GET /requests/mine", customer(c.Request.ListMyRequests))
	mux.HandleFunc("POST /requests/{title}/payments", customer(c.Request.Pay))
	mux.HandleFunc("GET /requests", admin(c.Request.ListRequests))
	mux.HandleFunc("GET /requests/assigned", role(c.Request.ListAssignedRequests, domain.RoleEmployee))
	mux.HandleFunc("GET /requests/{title}", authed(c.Request.GetRequest))
	mux.HandleFunc("POST /requests/{title}/accept", admin(c.Request.Accept))
	mux.HandleFunc("POST /requests/{title}/reject", admin(c.Request.Reject))
	mux.HandleFunc("POST /requests/{title}/complete", admin(c.Request.Complete))
	mux.HandleFunc("PATCH /requests/{title}/progress/{field}", role(c.Request.SetProgress, domain.RoleEmployee, domain.RoleAdmin))

	// Employees
	mux.HandleFunc("POST /employees", admin(c.Employee.InviteEmployee))
	mux.HandleFunc("GET /employees", admin(c.Employee.ListEmployees))

	// Live subscriptions
	mux.HandleFunc("GET /requests/{title}/live", authed(c.Live.WatchRequest))
	mux.HandleFunc("GET /employees/live", admin(c.Live.WatchEmployees))

	mux.HandleFunc("GET /healthz", Healthz)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewRelayRouter mounts the email relay behind the per-client rate limiter.
func NewRelayRouter(relay *controllers.RelayController, limiter *middleware.RateLimiter) *http.ServeMux {
	mux := http.NewServeMux()
	limiter.OnLimit = relay.TooManyRequests
	mux.Handle("/api/send", limiter.Limit(http.HandlerFunc(relay.Send)))
	mux.HandleFunc("GET /healthz", Healthz)
	return mux
}

// Healthz godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Router /healthz [get]
func Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
