package handlers

import (
	"fmt"
	"net/http"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/services/printer"
)

// LabelsRequest selects the assets to print and the sheet layout
type LabelsRequest struct {
	AssetIDs []uint              `json:"assetIds"`
	Layout   printer.LabelConfig `json:"layout"`
}

// assetLabels renders a PDF sheet of QR labels
func (r *Router) assetLabels(w http.ResponseWriter, req *http.Request) {
	var body LabelsRequest
	if !decodeJSON(w, req, &body) {
		return
	}
	if len(body.AssetIDs) == 0 {
		r.respondServiceError(w, req, apperr.Invalid("assetIds is required"))
		return
	}

	found, err := r.Assets.FindByIDs(req.Context(), body.AssetIDs)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if len(found) == 0 {
		r.respondServiceError(w, req, apperr.NotFound("asset", body.AssetIDs))
		return
	}

	pdfBytes, err := printer.LabelsPDF(r.publicBaseURL, found, body.Layout)
	if err != nil {
		r.respondServiceError(w, req, fmt.Errorf("generate labels: %w", err))
		return
	}
	attachment(w, "application/pdf", fmt.Sprintf("asset_labels_%d.pdf", len(found)), pdfBytes)
}

// assetQRCode serves the QR PNG of an asset by id
func (r *Router) assetQRCode(w http.ResponseWriter, req *http.Request) {
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
	r.writeQRCode(w, req, asset.QRCode)
}

func (r *Router) writeQRCode(w http.ResponseWriter, req *http.Request, code string) {
	q := newQuery(req)
	size := q.integer("size")
	if q.err != nil {
		r.respondServiceError(w, req, q.err)
		return
	}
	if size > 1024 {
		size = 1024
	}

	png, err := printer.AssetQRCode(r.publicBaseURL, code, size)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	attachment(w, "image/png", "", png)
}
