package handlers

import (
	"net/http"
	"time"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/maintenance"
)

const resourceMaintenance = "maintenance"

// CompleteRequest optionally backdates a completion
type CompleteRequest struct {
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (r *Router) listMaintenance(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := maintenance.ListFilter{
		AssetID:     q.id("assetId"),
		IsCompleted: q.boolean("completed"),
		From:        q.date("from"),
		To:          q.date("to"),
		Pagination:  q.pagination(),
	}
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	page, err := r.Maintenance.List(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// createMaintenance plans a maintenance. The scheduler defaults to the caller.
func (r *Router) createMaintenance(w http.ResponseWriter, req *http.Request) {
	var in maintenance.CreateInput
	if !decodeJSON(w, req, &in) {
		return
	}
	if actor := actorID(req); in.ScheduledBy == 0 && actor != nil {
		in.ScheduledBy = *actor
	}

	schedule, err := r.Maintenance.Create(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionCreate, resourceMaintenance, schedule.ID, "Scheduled maintenance "+schedule.Title,
		map[string]any{"assetId": schedule.AssetID})
	respondJSON(w, http.StatusCreated, schedule)
}

func (r *Router) upcomingMaintenance(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	days := q.integer("days")
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	rows, err := r.Maintenance.Upcoming(req.Context(), days)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (r *Router) getMaintenance(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	schedule, err := r.Maintenance.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if schedule == nil {
		r.respondServiceError(w, req, apperr.NotFound(resourceMaintenance, id))
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (r *Router) updateMaintenance(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var in maintenance.UpdateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	schedule, err := r.Maintenance.Update(req.Context(), id, in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionUpdate, resourceMaintenance, id, "Updated maintenance "+schedule.Title, nil)
	respondJSON(w, http.StatusOK, schedule)
}

// completeMaintenance accepts an empty body
func (r *Router) completeMaintenance(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var body CompleteRequest
	if !decodeOptionalJSON(w, req, &body) {
		return
	}

	schedule, err := r.Maintenance.Complete(req.Context(), id, body.CompletedAt, actorID(req))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionUpdate, resourceMaintenance, id, "Completed maintenance "+schedule.Title, nil)
	respondJSON(w, http.StatusOK, schedule)
}

func (r *Router) deleteMaintenance(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	if err := r.Maintenance.Delete(req.Context(), id); err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionDelete, resourceMaintenance, id, "Deleted maintenance", nil)
	w.WriteHeader(http.StatusNoContent)
}
