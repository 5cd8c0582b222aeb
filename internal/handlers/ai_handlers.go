package handlers

import (
	"context"
	"net/http"
)

// analysisResponse wraps the free-text answers of the single-field prompts
type analysisResponse struct {
	AssetID  uint   `json:"assetId"`
	Analysis string `json:"analysis"`
}

func (r *Router) aiSuggestions(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	suggestions, err := r.Advisor.GetSuggestions(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestions)
}

func (r *Router) aiCondition(w http.ResponseWriter, req *http.Request) {
	r.aiAnalysis(w, req, r.Advisor.AnalyzeCondition)
}

func (r *Router) aiMaintenance(w http.ResponseWriter, req *http.Request) {
	r.aiAnalysis(w, req, r.Advisor.PredictMaintenance)
}

func (r *Router) aiReplacement(w http.ResponseWriter, req *http.Request) {
	r.aiAnalysis(w, req, r.Advisor.RecommendReplacement)
}

func (r *Router) aiAnalysis(w http.ResponseWriter, req *http.Request, run func(context.Context, uint) (string, error)) {
	id, err := pathID(req, "id")
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	text, err := run(req.Context(), id)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, analysisResponse{AssetID: id, Analysis: text})
}
