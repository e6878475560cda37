package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/console"
	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	idPattern    = "{id:[0-9a-fA-F-]{36}}"
	maxFormBytes = 1 << 20
)

// App holds application dependencies
type App struct {
	console    *console.Console
	metrics    *metrics.AppMetrics
	logger     zerolog.Logger
	searchWait time.Duration
}

// NewApp creates a new application instance
func NewApp(con *console.Console, m *metrics.AppMetrics, logger zerolog.Logger) *App {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &App{
		console:    con,
		metrics:    m,
		logger:     logger,
		searchWait: 5 * time.Second,
	}
}

// controllerFunc picks the page a request acts on
type controllerFunc func(r *http.Request) (console.Controller, error)

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.ErrorHandlerMiddleware(a.logger))
	r.Use(middleware.MetricsMiddleware(a.metrics, a.logger))
	r.Use(middleware.LoginGate(a.console.Session, "/health"))

	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc(middleware.LoginPath, a.LoginStatusHandler).Methods(http.MethodGet)
	r.HandleFunc(middleware.LoginPath, a.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/logout", a.LogoutHandler).Methods(http.MethodPost)

	c := r.PathPrefix("/console").Subrouter()
	c.HandleFunc("/dashboard", a.DashboardHandler).Methods(http.MethodGet)
	c.HandleFunc("/notifications", a.NotificationsHandler).Methods(http.MethodGet)

	// Registered before the generic order routes
	c.HandleFunc("/orders/search/{field}", a.OrderSearchHandler).Methods(http.MethodGet)

	c.HandleFunc("/products/"+idPattern+"/detail", a.ProductDetailHandler).Methods(http.MethodGet)
	a.pageRoutes(c.PathPrefix("/products/"+idPattern+"/variants").Subrouter(), a.productVariants)

	c.HandleFunc("/orders/"+idPattern+"/detail", a.OrderDetailHandler).Methods(http.MethodGet)
	a.pageRoutes(c.PathPrefix("/orders/"+idPattern+"/lines").Subrouter(), a.orderLines)

	for name, page := range a.console.Pages() {
		page := page
		a.pageRoutes(c.PathPrefix("/"+name).Subrouter(), func(*http.Request) (console.Controller, error) {
			return page, nil
		})
	}
}

// pageRoutes mounts the list, form and delete actions of one page on sr
func (a *App) pageRoutes(sr *mux.Router, pick controllerFunc) {
	sr.HandleFunc("", a.withPage(pick, a.listPage)).Methods(http.MethodGet)
	sr.HandleFunc("/refresh", a.withPage(pick, a.refreshPage)).Methods(http.MethodPost)
	sr.HandleFunc("/add", a.withPage(pick, a.openAdd)).Methods(http.MethodPost)
	sr.HandleFunc("/cancel", a.withPage(pick, a.cancelForm)).Methods(http.MethodPost)
	sr.HandleFunc("/submit", a.withPage(pick, a.submitForm)).Methods(http.MethodPost)
	sr.HandleFunc("/{row:[0-9a-fA-F-]{36}}/edit", a.withPage(pick, a.openEdit)).Methods(http.MethodPost)
	sr.HandleFunc("/{row:[0-9a-fA-F-]{36}}", a.withPage(pick, a.deleteRow)).Methods(http.MethodDelete)
}

type pageAction func(w http.ResponseWriter, r *http.Request, page console.Controller)

func (a *App) withPage(pick controllerFunc, action pageAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pick(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		action(w, r, page)
	}
}

func (a *App) productVariants(r *http.Request) (console.Controller, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	return a.console.ProductDetail(id).Variants, nil
}

func (a *App) orderLines(r *http.Request) (console.Controller, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	return a.console.OrderDetail(id).Lines, nil
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// LoginStatusHandler handles GET /login
func (a *App) LoginStatusHandler(w http.ResponseWriter, r *http.Request) {
	loggedIn, err := a.console.Session.LoggedIn(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, map[string]bool{
		"logged_in":      loggedIn,
		"login_required": a.console.Session.LoginRequired(),
	})
}

// LoginHandler handles POST /login with {"access_token": "..."}
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxFormBytes)).Decode(&req); err != nil {
		a.writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.console.Session.Login(r.Context(), req.AccessToken); err != nil {
		if errors.Is(err, console.ErrEmptyToken) {
			a.writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, map[string]bool{"logged_in": true})
}

// LogoutHandler handles POST /logout
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.console.Session.Logout(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, map[string]bool{"logged_in": false})
}

// DashboardHandler handles GET /console/dashboard
func (a *App) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := a.console.Dashboard.Load(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, a.console.Dashboard.View())
}

// NotificationsHandler handles GET /console/notifications
func (a *App) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, http.StatusOK, nil)
}

// ProductDetailHandler handles GET /console/products/{id}/detail
func (a *App) ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	detail := a.console.ProductDetail(id)
	if err := detail.Refresh(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, detail.View())
}

// OrderDetailHandler handles GET /console/orders/{id}/detail
func (a *App) OrderDetailHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	detail := a.console.OrderDetail(id)
	if err := detail.Refresh(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, detail.View(r.Context()))
}

// OrderSearchHandler handles GET /console/orders/search/{customers|stores}?q=
// and waits for the debounced search to settle.
func (a *App) OrderSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ctx, cancel := context.WithTimeout(r.Context(), a.searchWait)
	defer cancel()

	orders := a.console.Orders
	var (
		state any
		err   error
	)
	switch mux.Vars(r)["field"] {
	case "customers":
		orders.Customers.Input(q)
		err = orders.Customers.Wait(ctx)
		state = orders.Customers.State()
	case "stores":
		orders.Stores.Input(q)
		err = orders.Stores.Wait(ctx)
		state = orders.Stores.State()
	default:
		a.writeMessage(w, r, http.StatusNotFound, "Unknown search field")
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, state)
}

func (a *App) listPage(w http.ResponseWriter, r *http.Request, page console.Controller) {
	ctx := r.Context()
	pageNum, size, paged, err := pageQuery(r)
	if err != nil {
		a.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if paged {
		err = page.ChangePage(ctx, pageNum, size)
	} else {
		err = page.Mount(ctx)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(ctx))
}

func (a *App) refreshPage(w http.ResponseWriter, r *http.Request, page console.Controller) {
	if err := page.Refresh(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(r.Context()))
}

func (a *App) openAdd(w http.ResponseWriter, r *http.Request, page console.Controller) {
	if err := page.OpenAdd(); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(r.Context()))
}

func (a *App) openEdit(w http.ResponseWriter, r *http.Request, page console.Controller) {
	id, err := pathID(r, "row")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := page.OpenEdit(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(r.Context()))
}

func (a *App) cancelForm(w http.ResponseWriter, r *http.Request, page console.Controller) {
	page.Cancel()
	a.respond(w, r, http.StatusOK, page.Snapshot(r.Context()))
}

func (a *App) submitForm(w http.ResponseWriter, r *http.Request, page console.Controller) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	if err != nil {
		a.writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	ctx := confirmContext(r)
	if err := page.SubmitJSON(ctx, body); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(ctx))
}

func (a *App) deleteRow(w http.ResponseWriter, r *http.Request, page console.Controller) {
	id, err := pathID(r, "row")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	ctx := confirmContext(r)
	if err := page.Delete(ctx, id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, page.Snapshot(ctx))
}

// confirmContext carries the user's approval when the request says ?confirm=true
func confirmContext(r *http.Request) context.Context {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		return console.WithConfirmation(r.Context())
	}
	return r.Context()
}

var errBadID = errors.New("invalid id")

func pathID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[key])
	if err != nil {
		return uuid.Nil, errBadID
	}
	return id, nil
}

// pageQuery reads ?page= and ?page_size=; paged is false when neither is set
func pageQuery(r *http.Request) (page, size int, paged bool, err error) {
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			return 0, 0, false, errors.New("page must be a positive integer")
		}
		paged = true
	}
	if v := q.Get("page_size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 1 {
			return 0, 0, false, errors.New("page_size must be a positive integer")
		}
		paged = true
	}
	if paged && page == 0 {
		page = 1
	}
	return page, size, paged, nil
}

type envelope struct {
	Data          any                    `json:"data,omitempty"`
	Error         string                 `json:"error,omitempty"`
	FieldErrors   console.FieldErrors    `json:"field_errors,omitempty"`
	Confirm       string                 `json:"confirm,omitempty"`
	Notifications []console.Notification `json:"notifications"`
}

func (a *App) respond(w http.ResponseWriter, _ *http.Request, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Notifications: a.console.Notifications.Drain()})
}

func (a *App) writeMessage(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg, Notifications: a.console.Notifications.Drain()})
}

// writeError maps console and upstream errors to a status code
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErrs console.FieldErrors
		confirm   *console.ConfirmationRequired
		apiErr    *client.APIError
	)
	env := envelope{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &fieldErrs):
		status = http.StatusUnprocessableEntity
		env.Error = "Please correct the highlighted fields"
		env.FieldErrors = fieldErrs
	case errors.As(err, &confirm):
		status = http.StatusConflict
		env.Error = "Confirmation required"
		env.Confirm = confirm.Prompt
	case errors.Is(err, client.ErrUnauthorized):
		a.console.Notifications.Drain()
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	case errors.Is(err, errBadID),
		errors.Is(err, console.ErrNoForm),
		errors.Is(err, console.ErrInvalidForm):
		status = http.StatusBadRequest
	case errors.Is(err, console.ErrModalOpen):
		status = http.StatusConflict
	case errors.As(err, &apiErr):
		env.Error = errorDetail(apiErr)
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
			status = apiErr.StatusCode
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	env.Notifications = a.console.Notifications.Drain()
	writeJSON(w, status, env)
}

func errorDetail(e *client.APIError) string {
	if d := strings.TrimSpace(e.Detail); d != "" {
		return d
	}
	return http.StatusText(e.StatusCode)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
