package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

func (a *API) handleLikeRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		rejectCredentials(w)
		return
	}

	id, err := recipeID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	recipe, err := a.likeRecipe(r.Context(), user.ID, id)
	if err != nil {
		respondLikeError(w, err)
		return
	}

	likesTotal.Inc()
	a.audit(r.Context(), user.Email, "recipe.like", fmt.Sprintf("recipe/%d", id), nil)
	a.publishJSON(r.Context(), likesAddedTopic, map[string]any{
		"user_id":   user.ID,
		"recipe_id": id,
		"likes":     recipe.Likes,
	})

	respondJSON(w, http.StatusOK, map[string]any{"recipe": a.presentRecipe(r.Context(), recipe)})
}

func (a *API) handleUnlikeRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		rejectCredentials(w)
		return
	}

	id, err := recipeID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	recipe, err := a.unlikeRecipe(r.Context(), user.ID, id)
	if err != nil {
		respondLikeError(w, err)
		return
	}

	unlikesTotal.Inc()
	a.audit(r.Context(), user.Email, "recipe.unlike", fmt.Sprintf("recipe/%d", id), nil)
	a.publishJSON(r.Context(), likesRemovedTopic, map[string]any{
		"user_id":   user.ID,
		"recipe_id": id,
		"likes":     recipe.Likes,
	})

	respondJSON(w, http.StatusOK, map[string]any{"recipe": a.presentRecipe(r.Context(), recipe)})
}

func respondLikeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRecipeNotFound), errors.Is(err, ErrNotLiked):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrSelfLike), errors.Is(err, ErrSelfUnlike):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, ErrAlreadyLiked):
		respondError(w, http.StatusBadRequest, err)
	default:
		// ErrLikeCountCorrupt and unexpected storage failures stay opaque.
		log.Error().Err(err).Msg("like ledger transaction")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
