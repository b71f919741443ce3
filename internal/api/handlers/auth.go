package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkataria09/sealdrop/internal/identity"
	"github.com/mkataria09/sealdrop/internal/utils"
)

type AuthHandler struct {
	identity    *identity.Service
	issuer      *identity.TokenIssuer
	environment string
}

func NewAuthHandler(ids *identity.Service, issuer *identity.TokenIssuer, environment string) *AuthHandler {
	return &AuthHandler{identity: ids, issuer: issuer, environment: environment}
}

// POST /api/v1/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	type Input struct {
		Username   string `json:"username"`
		Credential string `json:"credential"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || input.Username == "" || input.Credential == "" {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if !h.identity.VerifyCredential(r.Context(), input.Username, input.Credential) {
		// Unknown user and wrong credential look identical from outside.
		utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, expiry, err := h.issuer.Issue(input.Username, input.Credential)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, token, int(time.Until(expiry).Seconds()))

	utils.Respond(w, http.StatusOK, "Login successful", map[string]any{
		"accessToken": token,
		"tokenType":   "bearer",
		"expiresAt":   expiry.UTC(),
	})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)

	utils.Respond(w, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, value string, maxAge int) {
	isProd := h.environment == "production"

	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
