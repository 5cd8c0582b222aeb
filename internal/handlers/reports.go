package handlers

import (
	"net/http"

	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/reports"
)

func (r *Router) listActivity(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := activity.ListFilter{
		UserID:       q.id("userId"),
		ResourceType: q.str("resourceType"),
		Action:       q.str("action"),
		Pagination:   q.pagination(),
	}
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	page, err := r.Activity.List(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (r *Router) getDashboard(w http.ResponseWriter, req *http.Request) {
	stats, err := r.Dashboard.Stats(req.Context())
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func reportFilter(q *query) reports.Filter {
	archived := q.boolean("includeArchived")
	return reports.Filter{
		From:            q.date("from"),
		To:              q.date("to"),
		Category:        models.AssetCategory(q.str("category")),
		Condition:       models.AssetCondition(q.str("condition")),
		Status:          models.ComplaintStatus(q.str("status")),
		IncludeArchived: archived != nil && *archived,
		IsCompleted:     q.boolean("completed"),
	}
}

func (r *Router) reportAssets(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := reportFilter(q)
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}
	rows, err := r.Reports.Assets(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (r *Router) reportComplaints(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := reportFilter(q)
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}
	rows, err := r.Reports.Complaints(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (r *Router) reportMaintenance(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := reportFilter(q)
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}
	rows, err := r.Reports.Maintenance(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
