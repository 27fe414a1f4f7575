package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"melatoninAPI/internal/dream"
	"melatoninAPI/middleware"
	"melatoninAPI/services"
)

type DreamHandler struct {
	dreamService *services.DreamService
}

func NewDreamHandler(dreamService *services.DreamService) *DreamHandler {
	return &DreamHandler{
		dreamService: dreamService,
	}
}

func (h *DreamHandler) CreateDream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	var req dream.CreateDreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.dreamService.CreateDream(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, d)
}

func (h *DreamHandler) GetDreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	dreams, err := h.dreamService.GetDreams(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dreams")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"dreams": dreams})
}

func (h *DreamHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	dreamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dream id")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.dreamService.AddComment(ctx, userID, dreamID, body.Content)
	if err != nil {
		if errors.Is(err, services.ErrDreamNotFound) {
			respondWithError(w, http.StatusNotFound, "Dream not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *DreamHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dreamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dream id")
		return
	}

	comments, err := h.dreamService.GetComments(ctx, dreamID)
	if err != nil {
		if errors.Is(err, services.ErrDreamNotFound) {
			respondWithError(w, http.StatusNotFound, "Dream not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (h *DreamHandler) ExportDreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	export, err := h.dreamService.ExportDreams(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export dreams")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="dreams.json"`)
	respondWithJSON(w, http.StatusOK, export)
}

// pathID parses a numeric {name} path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
