package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"melatoninAPI/internal/ritual"
	"melatoninAPI/middleware"
	"melatoninAPI/services"
)

type RitualHandler struct {
	ritualService *services.RitualService
}

func NewRitualHandler(ritualService *services.RitualService) *RitualHandler {
	return &RitualHandler{
		ritualService: ritualService,
	}
}

func (h *RitualHandler) CreateRitual(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	var req ritual.CreateRitualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.ritualService.CreateRitual(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *RitualHandler) GetRituals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	category := r.URL.Query().Get("category")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rituals, err := h.ritualService.GetRituals(ctx, userID, category, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load rituals")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"rituals": rituals})
}

func (h *RitualHandler) LogEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	ritualID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ritual id")
		return
	}

	var req ritual.LogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.ritualService.LogEntry(ctx, userID, ritualID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRitualNotFound) {
			respondWithError(w, http.StatusNotFound, "Ritual not found")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *RitualHandler) ExportRituals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	export, err := h.ritualService.ExportRituals(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export ritual log")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="rituals.json"`)
	respondWithJSON(w, http.StatusOK, export)
}
