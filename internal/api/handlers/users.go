package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mkataria09/sealdrop/internal/api/middleware"
	"github.com/mkataria09/sealdrop/internal/identity"
	"github.com/mkataria09/sealdrop/internal/repositories"
	"github.com/mkataria09/sealdrop/internal/utils"
)

type UserHandler struct {
	identity *identity.Service
	store    *repositories.Store
}

func NewUserHandler(ids *identity.Service, store *repositories.Store) *UserHandler {
	return &UserHandler{identity: ids, store: store}
}

// POST /api/v1/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	type Input struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || input.ID == "" || input.Name == "" || input.Email == "" {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	prov, err := h.identity.Provision(r.Context(), input.ID, input.Name, input.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusCreated, "Save this credential now; it cannot be shown again", map[string]any{
		"user":       prov.User,
		"credential": prov.Credential,
	})
}

// GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Users fetched", users)
}

// GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "User fetched", user)
}
