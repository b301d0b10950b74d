package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type listParams struct {
	Limit  int
	Offset int
	Search string
}

func parseListParams(r *http.Request) (listParams, error) {
	params := listParams{Limit: defaultListLimit}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return listParams{}, errors.New("limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		params.Limit = limit
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return listParams{}, errors.New("offset must be a non-negative integer")
		}
		params.Offset = offset
	}

	params.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	return params, nil
}

func recipeID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("valid recipe id is required")
	}
	return uint(id), nil
}

func (a *API) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	query := a.store.ORM.WithContext(ctx).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset)
	if params.Search != "" {
		query = query.Where("title ILIKE ?", "%"+params.Search+"%")
	}

	var models []recipeModel
	if err := query.Find(&models).Error; err != nil {
		log.Error().Err(err).Msg("list recipes")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	recipes := make([]Recipe, 0, len(models))
	for _, m := range models {
		recipes = append(recipes, a.presentRecipe(r.Context(), m.toAPI()))
	}

	respondJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

func (a *API) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var model recipeModel
	if err := a.store.ORM.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, ErrRecipeNotFound)
			return
		}
		log.Error().Err(err).Msg("load recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"recipe": a.presentRecipe(r.Context(), model.toAPI())})
}

type recipeForm struct {
	Title       string
	Ingredients string
	Description string
	Image       multipart.File
	ImageHeader *multipart.FileHeader
}

func parseRecipeForm(r *http.Request) (recipeForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return recipeForm{}, errors.New("multipart form body required")
	}

	form := recipeForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Ingredients: strings.TrimSpace(r.FormValue("ingredients")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if form.Title == "" || form.Ingredients == "" || form.Description == "" {
		return recipeForm{}, errors.New("title, ingredients and description fields are mandatory")
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// image is optional
	case err != nil:
		return recipeForm{}, errors.New("invalid image upload")
	default:
		form.Image = file
		form.ImageHeader = header
	}

	return form, nil
}

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// storeImage uploads the image under a fresh uuid-based key and returns it.
func (a *API) storeImage(r *http.Request, form recipeForm) (string, int, error) {
	defer form.Image.Close()

	ext := strings.ToLower(filepath.Ext(form.ImageHeader.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", http.StatusBadRequest, errors.New("unsupported image type")
	}
	if a.store.S3 == nil {
		return "", http.StatusFailedDependency, errors.New("image storage not configured")
	}

	key := fmt.Sprintf("images/%s%s", uuid.New(), ext)
	if err := a.store.S3.PutObject(r.Context(), a.config.ImageBucket, key, form.Image, form.ImageHeader.Size, contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("upload recipe image")
		return "", http.StatusInternalServerError, errors.New("internal error")
	}
	return key, 0, nil
}

func (a *API) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		rejectCredentials(w)
		return
	}

	form, err := parseRecipeForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var imageKey string
	if form.Image != nil {
		key, status, err := a.storeImage(r, form)
		if err != nil {
			respondError(w, status, err)
			return
		}
		imageKey = key
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	model := recipeModel{
		Title:       form.Title,
		Ingredients: form.Ingredients,
		Description: form.Description,
		ImageKey:    imageKey,
		OwnerID:     user.ID,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		log.Error().Err(err).Msg("create recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	a.audit(r.Context(), user.Email, "recipe.create", fmt.Sprintf("recipe/%d", model.ID), nil)
	a.publishJSON(r.Context(), recipesCreatedTopic, map[string]any{
		"recipe_id": model.ID,
		"owner_id":  user.ID,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"recipe": a.presentRecipe(r.Context(), model.toAPI())})
}

func (a *API) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
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

	form, err := parseRecipeForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var model recipeModel
	if err := orm.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, ErrRecipeNotFound)
			return
		}
		log.Error().Err(err).Msg("load recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if model.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, errors.New("not the recipe owner"))
		return
	}

	model.Title = form.Title
	model.Ingredients = form.Ingredients
	model.Description = form.Description
	if form.Image != nil {
		key, status, err := a.storeImage(r, form)
		if err != nil {
			respondError(w, status, err)
			return
		}
		model.ImageKey = key
	}

	if err := orm.Model(&model).Updates(map[string]any{
		"title":       model.Title,
		"ingredients": model.Ingredients,
		"description": model.Description,
		"image_key":   model.ImageKey,
	}).Error; err != nil {
		log.Error().Err(err).Msg("update recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	a.audit(r.Context(), user.Email, "recipe.update", fmt.Sprintf("recipe/%d", model.ID), nil)

	respondJSON(w, http.StatusOK, map[string]any{"recipe": a.presentRecipe(r.Context(), model.toAPI())})
}

func (a *API) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	orm := a.store.ORM.WithContext(ctx)

	var model recipeModel
	if err := orm.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, ErrRecipeNotFound)
			return
		}
		log.Error().Err(err).Msg("load recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	if model.OwnerID != user.ID {
		respondError(w, http.StatusForbidden, errors.New("not the recipe owner"))
		return
	}

	// Like rows go with the recipe via the FK cascade.
	if err := orm.Delete(&recipeModel{}, id).Error; err != nil {
		log.Error().Err(err).Msg("delete recipe")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	a.audit(r.Context(), user.Email, "recipe.delete", fmt.Sprintf("recipe/%d", id), nil)

	respondJSON(w, http.StatusNoContent, nil)
}

// presentRecipe swaps the stored image key for a time-limited download URL.
// The raw key never leaves the service.
func (a *API) presentRecipe(ctx context.Context, rec Recipe) Recipe {
	if rec.ImagePath == "" {
		return rec
	}
	if a.store.S3 == nil {
		rec.ImagePath = ""
		return rec
	}

	url, err := a.store.S3.PresignGet(ctx, a.config.ImageBucket, rec.ImagePath, imageURLExpiry)
	if err != nil {
		log.Warn().Err(err).Msg("presign image url")
		rec.ImagePath = ""
		return rec
	}
	rec.ImagePath = url
	return rec
}
