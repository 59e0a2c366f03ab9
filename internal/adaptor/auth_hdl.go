package adaptor

import (
	"net/http"
	"time"

	"watch-list/internal/dto/request"
	"watch-list/internal/dto/response"
	"watch-list/internal/usecase"
	"watch-list/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	cookie  utils.JWTConfig
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, cookie utils.JWTConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		log:     log.With(zap.String("handler", "auth")),
	}
}

func (h *AuthHandler) cookieName() string {
	if h.cookie.CookieName == "" {
		return "token"
	}
	return h.cookie.CookieName
}

// setSessionCookie mirrors the token into an HttpOnly cookie for browser
// clients; API clients keep using the Authorization header.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, auth *response.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    auth.Token,
		Path:     "/",
		Expires:  auth.ExpiresAt,
		MaxAge:   int(time.Until(auth.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	h.setSessionCookie(w, resp)
	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	h.setSessionCookie(w, resp)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logging out
// only drops the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	utils.ResponseSuccess(w, "Logout successful", nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Me(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}
