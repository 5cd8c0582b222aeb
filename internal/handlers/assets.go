package handlers

import (
	"net/http"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/services/assets"
	"github.com/xelth-com/eckassets/internal/services/history"
)

const resourceAsset = "asset"

func (r *Router) listAssets(w http.ResponseWriter, req *http.Request) {
	q := newQuery(req)
	filter := assets.ListFilter{
		Search:     q.str("search"),
		Category:   models.AssetCategory(q.str("category")),
		Condition:  models.AssetCondition(q.str("condition")),
		Owner:      q.str("owner"),
		IsArchived: q.boolean("archived"),
		Pagination: q.pagination(),
	}
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}

	page, err := r.Assets.List(req.Context(), filter)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (r *Router) createAsset(w http.ResponseWriter, req *http.Request) {
	var in assets.CreateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	asset, err := r.Assets.Create(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionCreate, resourceAsset, asset.ID, "Created asset "+asset.Name,
		map[string]any{"qrCode": asset.QRCode, "category": asset.Category})
	respondJSON(w, http.StatusCreated, asset)
}

func (r *Router) getAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	asset, err := r.Assets.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if asset == nil {
		r.respondServiceError(w, req, apperr.NotFound(resourceAsset, id))
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (r *Router) updateAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var in assets.UpdateInput
	if !decodeJSON(w, req, &in) {
		return
	}

	asset, err := r.Assets.Update(req.Context(), id, in, actorID(req))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionUpdate, resourceAsset, id, "Updated asset "+asset.Name, nil)
	respondJSON(w, http.StatusOK, asset)
}

// archiveAsset is the soft delete behind DELETE /assets/{id}
func (r *Router) archiveAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	if _, err := r.Assets.Archive(req.Context(), id, actorID(req)); err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionArchive, resourceAsset, id, "Archived asset", nil)
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "isArchived": true})
}

func (r *Router) restoreAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	asset, err := r.Assets.Restore(req.Context(), id, actorID(req))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionRestore, resourceAsset, id, "Restored asset "+asset.Name, nil)
	respondJSON(w, http.StatusOK, asset)
}

func (r *Router) permanentDeleteAsset(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	if err := r.Assets.PermanentDelete(req.Context(), id); err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.logActivity(req, activity.ActionDelete, resourceAsset, id, "Permanently deleted asset",
		map[string]any{"assetId": id})
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) listAssetHistory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	rows, err := r.History.ListByAsset(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// appendAssetHistory records a manual audit note. The actor is always the
// caller.
func (r *Router) appendAssetHistory(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	var in history.AppendInput
	if !decodeJSON(w, req, &in) {
		return
	}
	in.AssetID = id
	in.ChangedBy = actorID(req)

	row, err := r.History.Append(req.Context(), in)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (r *Router) getHistoryEntry(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	row, err := r.History.Get(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if row == nil {
		r.respondServiceError(w, req, apperr.NotFound("history entry", id))
		return
	}
	respondJSON(w, http.StatusOK, row)
}
