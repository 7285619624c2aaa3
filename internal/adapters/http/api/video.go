package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/aromabalance/balance/internal/app"
	"github.com/aromabalance/balance/internal/domain/model"
	"github.com/aromabalance/balance/pkg/logger"
)

const maxRequestBody = 64 << 10

// recipeVideoRequest mirrors the OpenAPI schema for POST /api/recipe-video.
type recipeVideoRequest struct {
	Query  string        `json:"query" validate:"max=300"`
	Recipe recipePayload `json:"recipe"`
}

type recipePayload struct {
	Name            string   `json:"name" validate:"max=200"`
	Cuisine         string   `json:"cuisine" validate:"max=100"`
	MainIngredients []string `json:"mainIngredients" validate:"max=30,dive,max=100"`
}

// recipeVideoResponse carries a null videoUrl when nothing was found. Score is
// always present for a found video, zero included.
type recipeVideoResponse struct {
	VideoURL *string `json:"videoUrl"`
	Title    string  `json:"title,omitempty"`
	Score    *int    `json:"score,omitempty"`
	Cached   bool    `json:"cached,omitempty"`
}

// VideoHandler handles recipe video lookups.
type VideoHandler struct {
	deps     Dependencies
	validate *validator.Validate
	logger   logger.Logger
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(deps Dependencies, l logger.Logger) *VideoHandler {
	v := validator.New()
	// Report json field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &VideoHandler{deps: deps, validate: v, logger: l}
}

// HandleRecipeVideo handles POST /api/recipe-video requests.
func (h *VideoHandler) HandleRecipeVideo(w http.ResponseWriter, r *http.Request) {
	const op = "api.recipe_video"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req recipeVideoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.FindVideo(r.Context(), service.VideoRequest{
		Query: req.Query,
		Recipe: model.RecipeQuery{
			Name:            req.Recipe.Name,
			Cuisine:         req.Recipe.Cuisine,
			MainIngredients: req.Recipe.MainIngredients,
		},
	})
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case errors.Is(err, service.ErrNotConfigured):
		h.logger.Error(r.Context(), "video search is not configured")
		writeError(w, http.StatusInternalServerError, "not_configured", ErrNotConfigured)
		return
	case err != nil:
		h.logger.Error(r.Context(), "recipe video lookup failed", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, "search_failed", ErrSearchFailed)
		return
	}

	if !res.Found {
		writeJSON(w, http.StatusOK, recipeVideoResponse{})
		return
	}
	url, score := res.VideoURL, res.Score
	writeJSON(w, http.StatusOK, recipeVideoResponse{
		VideoURL: &url,
		Title:    res.Title,
		Score:    &score,
		Cached:   res.Cached,
	})
}
