package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
)

// PublicComplaintRequest is what an anonymous reporter submits after
// scanning a label
type PublicComplaintRequest struct {
	SenderName  string `json:"senderName"`
	Description string `json:"description"`
}

// publicAssetView hides the internal bookkeeping of an asset
type publicAssetView struct {
	Name       string                `json:"name"`
	Category   models.AssetCategory  `json:"category"`
	Condition  models.AssetCondition `json:"condition"`
	Owner      string                `json:"owner"`
	PhotoURL   *string               `json:"photoUrl,omitempty"`
	QRCode     string                `json:"qrCode"`
	IsArchived bool                  `json:"isArchived"`
}

func (r *Router) lookupQR(w http.ResponseWriter, req *http.Request) (*models.Asset, bool) {
	code := mux.Vars(req)["qr"]
	asset, err := r.Assets.GetByQRCode(req.Context(), code)
	if err != nil {
		r.respondServiceError(w, req, err)
		return nil, false
	}
	if asset == nil {
		r.respondServiceError(w, req, apperr.NotFound(resourceAsset, code))
		return nil, false
	}
	return asset, true
}

// publicAsset resolves a scanned code, archived assets included
func (r *Router) publicAsset(w http.ResponseWriter, req *http.Request) {
	asset, ok := r.lookupQR(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, publicAssetView{
		Name:       asset.Name,
		Category:   asset.Category,
		Condition:  asset.Condition,
		Owner:      asset.Owner,
		PhotoURL:   asset.PhotoURL,
		QRCode:     asset.QRCode,
		IsArchived: asset.IsArchived,
	})
}

func (r *Router) publicQRCode(w http.ResponseWriter, req *http.Request) {
	asset, ok := r.lookupQR(w, req)
	if !ok {
		return
	}
	r.writeQRCode(w, req, asset.QRCode)
}

// publicComplaint files a complaint through a scanned code. Archived assets
// answer 404 like unknown codes.
func (r *Router) publicComplaint(w http.ResponseWriter, req *http.Request) {
	var body PublicComplaintRequest
	if !decodeJSON(w, req, &body) {
		return
	}

	complaint, err := r.Complaints.CreateByQRCode(req.Context(), mux.Vars(req)["qr"], body.SenderName, body.Description)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusCreated, complaint)
}
