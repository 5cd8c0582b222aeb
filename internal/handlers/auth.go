package handlers

import (
	"net/http"

	"github.com/xelth-com/eckassets/internal/middleware"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/services/activity"
	"github.com/xelth-com/eckassets/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Tokens tokenPair    `json:"tokens"`
	User   *models.User `json:"user"`
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if !decodeJSON(w, req, &loginReq) {
		return
	}

	user, err := r.Users.Authenticate(req.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}

	r.respondTokens(w, req, user)
	if r.Activity != nil {
		r.recordActivity(req, user.ID, activity.ActionLogin, "user", user.ID, "User logged in", nil)
	}
}

// refresh exchanges a refresh token for a new pair
func (r *Router) refresh(w http.ResponseWriter, req *http.Request) {
	var body RefreshRequest
	if !decodeJSON(w, req, &body) {
		return
	}

	claims, err := utils.ValidateToken(body.RefreshToken, r.jwtSecret)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	rawID, _ := claims["id"].(float64)

	user, err := r.Users.Get(req.Context(), uint(rawID))
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	r.respondTokens(w, req, user)
}

func (r *Router) respondTokens(w http.ResponseWriter, req *http.Request, user *models.User) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, r.jwtSecret)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{
		Tokens: tokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
		User:   user.Sanitize(),
	})
}

// me returns the account behind the access token
func (r *Router) me(w http.ResponseWriter, req *http.Request) {
	p, _ := middleware.PrincipalFrom(req.Context())
	user, err := r.Users.Get(req.Context(), p.UserID)
	if err != nil {
		r.respondServiceError(w, req, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
