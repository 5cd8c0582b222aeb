package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/ai"
	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/buildinfo"
	"github.com/xelth-com/eckassets/internal/middleware"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/complaints"
	"github.com/xelth-com/eckassets/internal/services/dashboard"
	"github.com/xelth-com/eckassets/internal/services/history"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
	"github.com/xelth-com/eckassets/internal/services/reports"
	"github.com/xelth-com/eckassets/internal/services/users"
)

// Deps are the collaborators the HTTP layer dispatches to
type Deps struct {
	DB          *gorm.DB
	Assets      *assets.Service
	History     *history.Service
	Complaints  *complaints.Service
	Maintenance *maintenance.Service
	Users       *users.Service
	Activity    *activity.Service
	Dashboard   *dashboard.Service
	Reports     *reports.Service
	Advisor     *ai.Advisor
}

// Options configure the router
type Options struct {
	JWTSecret     string
	PublicBaseURL string
	Logger        *zap.Logger
}

// Router wraps the mux router and the services
type Router struct {
	*mux.Router
	Deps
	jwtSecret     string
	publicBaseURL string
	log           *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps, opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		Router:        mux.NewRouter(),
		Deps:          deps,
		jwtSecret:     opts.JWTSecret,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		log:           log.Named("http"),
	}

	r.Use(middleware.Recovery(r.log), middleware.Logging(r.log))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/api/status", r.getStatus).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/refresh", r.refresh).Methods("POST")

	// Public QR routes
	public := r.PathPrefix("/public/assets/{qr}").Subrouter()
	public.HandleFunc("", r.publicAsset).Methods("GET")
	public.HandleFunc("/qrcode.png", r.publicQRCode).Methods("GET")
	public.HandleFunc("/complaints", r.publicComplaint).Methods("POST")

	// Everything below needs a staff or admin token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(r.jwtSecret), middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api.HandleFunc("/me", r.me).Methods("GET")

	api.HandleFunc("/assets", r.listAssets).Methods("GET")
	api.HandleFunc("/assets", r.createAsset).Methods("POST")
	api.HandleFunc("/assets/labels.pdf", r.assetLabels).Methods("POST")
	api.HandleFunc("/assets/{id:[0-9]+}", r.getAsset).Methods("GET")
	api.HandleFunc("/assets/{id:[0-9]+}", r.updateAsset).Methods("PUT")
	api.HandleFunc("/assets/{id:[0-9]+}", r.archiveAsset).Methods("DELETE")
	api.HandleFunc("/assets/{id:[0-9]+}/restore", r.restoreAsset).Methods("POST")
	api.Handle("/assets/{id:[0-9]+}/permanent", adminOnly(http.HandlerFunc(r.permanentDeleteAsset))).Methods("DELETE")
	api.HandleFunc("/assets/{id:[0-9]+}/history", r.listAssetHistory).Methods("GET")
	api.HandleFunc("/assets/{id:[0-9]+}/history", r.appendAssetHistory).Methods("POST")
	api.HandleFunc("/assets/{id:[0-9]+}/qrcode.png", r.assetQRCode).Methods("GET")

	api.HandleFunc("/history/{id:[0-9]+}", r.getHistoryEntry).Methods("GET")

	api.HandleFunc("/complaints", r.listComplaints).Methods("GET")
	api.HandleFunc("/complaints", r.createComplaint).Methods("POST")
	api.HandleFunc("/complaints/{id:[0-9]+}", r.getComplaint).Methods("GET")
	api.HandleFunc("/complaints/{id:[0-9]+}/status", r.updateComplaintStatus).Methods("PUT")
	api.HandleFunc("/complaints/{id:[0-9]+}", r.deleteComplaint).Methods("DELETE")

	api.HandleFunc("/maintenance", r.listMaintenance).Methods("GET")
	api.HandleFunc("/maintenance", r.createMaintenance).Methods("POST")
	api.HandleFunc("/maintenance/upcoming", r.upcomingMaintenance).Methods("GET")
	api.HandleFunc("/maintenance/{id:[0-9]+}", r.getMaintenance).Methods("GET")
	api.HandleFunc("/maintenance/{id:[0-9]+}", r.updateMaintenance).Methods("PUT")
	api.HandleFunc("/maintenance/{id:[0-9]+}/complete", r.completeMaintenance).Methods("POST")
	api.HandleFunc("/maintenance/{id:[0-9]+}", r.deleteMaintenance).Methods("DELETE")

	usersAPI := api.PathPrefix("/users").Subrouter()
	usersAPI.Use(adminOnly)
	usersAPI.HandleFunc("", r.listUsers).Methods("GET")
	usersAPI.HandleFunc("", r.createUser).Methods("POST")
	usersAPI.HandleFunc("/{id:[0-9]+}", r.getUser).Methods("GET")
	usersAPI.HandleFunc("/{id:[0-9]+}", r.updateUser).Methods("PUT")
	usersAPI.HandleFunc("/{id:[0-9]+}", r.deactivateUser).Methods("DELETE")

	api.HandleFunc("/activity", r.listActivity).Methods("GET")
	api.HandleFunc("/dashboard", r.getDashboard).Methods("GET")
	api.HandleFunc("/reports/assets", r.reportAssets).Methods("GET")
	api.HandleFunc("/reports/complaints", r.reportComplaints).Methods("GET")
	api.HandleFunc("/reports/maintenance", r.reportMaintenance).Methods("GET")

	aiAPI := api.PathPrefix("/ai/assets/{id:[0-9]+}").Subrouter()
	aiAPI.HandleFunc("/suggestions", r.aiSuggestions).Methods("GET")
	aiAPI.HandleFunc("/condition", r.aiCondition).Methods("GET")
	aiAPI.HandleFunc("/maintenance", r.aiMaintenance).Methods("GET")
	aiAPI.HandleFunc("/replacement", r.aiReplacement).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	status := "ok"
	code := http.StatusOK
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err != nil || sqlDB.PingContext(req.Context()) != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]string{"status": status})
}

// getStatus returns build and process information
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "running",
		"buildTime":  buildinfo.BuildTime,
		"commitTime": buildinfo.CommitTime,
		"commitHash": buildinfo.CommitHash,
		"startTime":  buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps a service error onto a status code. Unknown
// errors are logged and hidden behind a generic 500.
func (r *Router) respondServiceError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrPrecondition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case isUniqueViolation(err):
		respondError(w, http.StatusConflict, "resource already exists")
	case ai.IsUpstream(err):
		r.log.Warn("text-generation endpoint failed", zap.String("path", req.URL.Path), zap.Error(err))
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Both drivers report unique violations only through their message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func decodeJSON(w http.ResponseWriter, req *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body and leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, req *http.Request, dst interface{}) bool {
	err := json.NewDecoder(req.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func pathID(req *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(req)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("invalid %s", name)
	}
	return uint(id), nil
}

// actorID is the authenticated caller, or nil on public routes.
func actorID(req *http.Request) *uint {
	p, ok := middleware.PrincipalFrom(req.Context())
	if !ok {
		return nil
	}
	id := p.UserID
	return &id
}

// logActivity records an authenticated mutation. Failures are only logged.
func (r *Router) logActivity(req *http.Request, action, resourceType string, resourceID uint, description string, metadata map[string]any) {
	actor := actorID(req)
	if actor == nil || r.Activity == nil {
		return
	}
	r.recordActivity(req, *actor, action, resourceType, resourceID, description, metadata)
}

func (r *Router) recordActivity(req *http.Request, userID uint, action, resourceType string, resourceID uint, description string, metadata map[string]any) {
	entry := activity.Entry{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		Metadata:     metadata,
	}
	if resourceID != 0 {
		entry.ResourceID = &resourceID
	}
	if description != "" {
		entry.Description = &description
	}
	if _, err := r.Activity.Log(req.Context(), entry); err != nil {
		r.log.Warn("activity log failed",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.Error(err),
		)
	}
}

// query reads typed query parameters and keeps the first parse error.
type query struct {
	values map[string][]string
	err    error
}

func newQuery(req *http.Request) *query {
	return &query{values: req.URL.Query()}
}

func (q *query) str(key string) string {
	if v := q.values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (q *query) integer(key string) int {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.err = apperr.Invalid("%s must be an integer", key)
	}
	return n
}

func (q *query) id(key string) *uint {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		q.err = apperr.Invalid("%s must be an id", key)
		return nil
	}
	id := uint(n)
	return &id
}

func (q *query) boolean(key string) *bool {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.err = apperr.Invalid("%s must be true or false", key)
		return nil
	}
	return &b
}

// date accepts RFC 3339 or a bare YYYY-MM-DD (UTC midnight).
func (q *query) date(key string) *time.Time {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	q.err = apperr.Invalid("%s must be a date", key)
	return nil
}

func (q *query) pagination() models.Pagination {
	return models.Pagination{Page: q.integer("page"), Limit: q.integer("limit")}
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
