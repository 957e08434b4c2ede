package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkwellapp/inkwell/internal/forms"
	"github.com/inkwellapp/inkwell/internal/middleware"
	"github.com/inkwellapp/inkwell/internal/session"
)

type AuthHandler struct {
	manager *session.Manager
	logger  *slog.Logger
	secure  bool
}

func NewAuthHandler(manager *session.Manager, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		manager: manager,
		logger:  logger,
		secure:  secureCookies,
	}
}

func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input forms.LoginInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if errs := forms.ValidateLogin(input); errs != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}

		token := middleware.GetSessionToken(r.Context())
		s, newToken, err := h.manager.Login(r.Context(), token, input.Email, input.Password)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		h.setCookie(w, newToken)
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input forms.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if errs := forms.ValidateRegister(input); errs != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}

		token := middleware.GetSessionToken(r.Context())
		s, newToken, err := h.manager.Register(r.Context(), token, input.Email, input.Password, input.Name)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		h.setCookie(w, newToken)
		writeJSON(w, http.StatusCreated, s)
	}
}

// Logout always clears the cookie. The remote session may already be gone;
// that still counts as logged out.
func (h *AuthHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.GetSessionToken(r.Context())
		ok, _ := h.manager.Logout(r.Context(), token)
		h.clearCookie(w)
		writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
	}
}

// Me reports the resolved session, authenticated or not, without error.
func (h *AuthHandler) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, middleware.GetSession(r.Context()))
	}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
