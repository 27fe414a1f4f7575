package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"melatoninAPI/middleware"
	"melatoninAPI/services"
)

type CircleHandler struct {
	circleService *services.CircleService
}

func NewCircleHandler(circleService *services.CircleService) *CircleHandler {
	return &CircleHandler{
		circleService: circleService,
	}
}

func (h *CircleHandler) CreateCircle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	var body struct {
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.circleService.CreateCircle(ctx, userID, body.Name, body.Description)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

func (h *CircleHandler) GetUserCircles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circles, err := h.circleService.GetUserCircles(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load circles")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"circles": circles})
}

func (h *CircleHandler) JoinCircle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	if err := h.circleService.JoinCircle(ctx, userID, circleID); err != nil {
		if errors.Is(err, services.ErrCircleNotFound) {
			respondWithError(w, http.StatusNotFound, "Circle not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to join circle")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "joined circle"})
}

func (h *CircleHandler) ShareDream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	var body struct {
		DreamID int64 `json:"dreamId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err = h.circleService.ShareDream(ctx, userID, circleID, body.DreamID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotCircleMember):
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
		case errors.Is(err, services.ErrDreamNotFound):
			respondWithError(w, http.StatusNotFound, "Dream not found")
		default:
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "dream shared"})
}

func (h *CircleHandler) GetCircleDreams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	dreams, err := h.circleService.GetCircleDreams(ctx, userID, circleID)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load circle dreams")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"dreams": dreams})
}

func (h *CircleHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	members, err := h.circleService.GetMembers(ctx, userID, circleID)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load members")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *CircleHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	var body struct {
		Title   *string `json:"title,omitempty"`
		Content string  `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.circleService.CreatePost(ctx, userID, circleID, body.Title, body.Content)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

func (h *CircleHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	posts, err := h.circleService.GetPosts(ctx, userID, circleID)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load circle posts")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *CircleHandler) AddPostComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	postID, err := pathID(r, "postId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.circleService.AddPostComment(ctx, userID, postID, body.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			respondWithError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrNotCircleMember):
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
		default:
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *CircleHandler) GetInvites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	invites, err := h.circleService.GetInvites(ctx, userID, circleID)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to load invites")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"invites": invites})
}

func (h *CircleHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	circleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid circle id")
		return
	}

	invite, err := h.circleService.CreateInvite(ctx, userID, circleID)
	if err != nil {
		if errors.Is(err, services.ErrNotCircleMember) {
			respondWithError(w, http.StatusForbidden, "Not a member of this circle")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to create invite")
		return
	}

	respondWithJSON(w, http.StatusCreated, invite)
}

func (h *CircleHandler) JoinByInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not identified")
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.circleService.JoinByInvite(ctx, userID, body.Code)
	if err != nil {
		if errors.Is(err, services.ErrInviteNotFound) {
			respondWithError(w, http.StatusNotFound, "Invite not found or already used")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to join by invite")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}
