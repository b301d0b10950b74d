package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"forkful/pkg/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	model := userModel{Email: email, PasswordHash: digest}
	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, errors.New("email already registered"))
			return
		}
		log.Error().Err(err).Msg("create user")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	registrationsTotal.Inc()
	a.audit(r.Context(), email, "user.register", fmt.Sprintf("user/%d", model.ID), nil)
	a.publishJSON(r.Context(), usersRegisteredTopic, map[string]any{"user_id": model.ID})

	respondJSON(w, http.StatusCreated, map[string]any{"user": model.toAPI()})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var model userModel
	err := a.store.ORM.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondInvalidCredentials(w)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load user for login")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	if !auth.CheckPassword(req.Password, model.PasswordHash) {
		respondInvalidCredentials(w)
		return
	}

	token, err := a.tokens.Issue(model.ID)
	if err != nil {
		log.Error().Err(err).Msg("issue access token")
		respondError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	loginsTotal.Inc()
	a.audit(r.Context(), email, "user.login", fmt.Sprintf("user/%d", model.ID), nil)

	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		rejectCredentials(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func respondInvalidCredentials(w http.ResponseWriter) {
	// Same status and body for unknown email and wrong password.
	respondError(w, http.StatusNotFound, errors.New("invalid credentials"))
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return errors.New("password must contain at least one uppercase letter")
	case !lower:
		return errors.New("password must contain at least one lowercase letter")
	case !digit:
		return errors.New("password must contain at least one digit")
	case !strings.ContainsAny(password, passwordSymbols):
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
