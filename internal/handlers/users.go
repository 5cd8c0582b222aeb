package handlers

import (
	"net/http"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/users"
)

const resourceUser = "user"

func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := users.ListFilter{
		Role:       models.UserRole(q.str("role")),
		IsActive:   q.boolean("active"),
		Search:     q.str("search"),
		Pagination: q.pagination(),
	}
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	page, err := r.Users.List(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var in users.CreateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	user, err := r.Users.Create(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionCreate, resourceUser, user.ID, "Created user "+user.Email,
		map[string]any{"role": user.Role})
	respondJSON(w, http.StatusCreated, user)
}

func (r *Router) getUser(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	user, err := r.Users.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if user == nil {
		r.respondServiceError(w, req, apperr.NotFound(resourceUser, id))
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (r *Router) updateUser(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var in users.UpdateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	user, err := r.Users.Update(req.Context(), id, in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionUpdate, resourceUser, id, "Updated user "+user.Email, nil)
	respondJSON(w, http.StatusOK, user)
}

// deactivateUser is a soft delete; the row stays for the audit trail
func (r *Router) deactivateUser(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if actor := actorID(req); actor != nil && *actor == id {
		r.respondServiceError(w, req, apperr.Precondition("cannot deactivate your own account"))
		return
	}

	user, err := r.Users.Deactivate(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionDelete, resourceUser, id, "Deactivated user "+user.Email, nil)
	respondJSON(w, http.StatusOK, user)
}
