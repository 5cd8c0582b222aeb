package handlers

import (
	"net/http"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/complaints"
)

const resourceComplaint = "complaint"

// ComplaintStatusRequest moves a complaint to a new status
type ComplaintStatusRequest struct {
	Status models.ComplaintStatus `json:"status"`
}

func (r *Router) listComplaints(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := complaints.ListFilter{
		AssetID:    q.id("assetId"),
		Status:     models.ComplaintStatus(q.str("status")),
		Search:     q.str("search"),
		Pagination: q.pagination(),
	}
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	page, err := r.Complaints.List(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (r *Router) createComplaint(w http.ResponseWriter, req *http.Request) {
	var in complaints.CreateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	complaint, err := r.Complaints.Create(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionCreate, resourceComplaint, complaint.ID, "Filed complaint",
		map[string]any{"assetId": complaint.AssetID})
	respondJSON(w, http.StatusCreated, complaint)
}

func (r *Router) getComplaint(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	complaint, err := r.Complaints.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if complaint == nil {
		r.respondServiceError(w, req, apperr.NotFound(resourceComplaint, id))
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

func (r *Router) updateComplaintStatus(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var body ComplaintStatusRequest
	if !decodeJSON(w, req, &body) {
		return
	}

	complaint, err := r.Complaints.UpdateStatus(req.Context(), id, body.Status, actorID(req))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionUpdate, resourceComplaint, id, "Complaint status changed",
		map[string]any{"status": complaint.Status})
	respondJSON(w, http.StatusOK, complaint)
}

func (r *Router) deleteComplaint(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	if err := r.Complaints.Delete(req.Context(), id); err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionDelete, resourceComplaint, id, "Deleted complaint", nil)
	w.WriteHeader(http.StatusNoContent)
}
