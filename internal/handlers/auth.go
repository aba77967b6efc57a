package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rewind-bknd/internal/auth"
	"rewind-bknd/internal/services"

	"go.uber.org/zap"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	authSvc      *services.AuthService
	logr         *zap.Logger
	secureCookie bool
}

func NewAuthHandler(svc *services.AuthService, logr *zap.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{authSvc: svc, logr: logr, secureCookie: secureCookie}
}

type loginReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type ldapReq struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

type tokenResp struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresAt    time.Time          `json:"access_expires_at"`
	User         *services.UserInfo `json:"user,omitempty"`
}

func (h *AuthHandler) writeTokens(w http.ResponseWriter, pair *auth.TokenPair, user *services.UserInfo) {
	h.setRefreshCookie(w, pair.RefreshToken, pair.RefreshExp)
	writeData(w, http.StatusOK, tokenResp{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.AccessExp,
		User:         user,
	})
}

// LoginLocal handles POST /auth/login
func (h *AuthHandler) LoginLocal(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}
	pair, user, err := h.authSvc.LoginLocal(r.Context(), req.Email, req.Password, req.DeviceInfo)
	if err != nil {
		h.logr.Warn("local login failed", zap.Error(err), zap.String("email", req.Email))
		writeError(w, h.logr, err, "login failed")
		return
	}
	h.writeTokens(w, pair, user)
}

// LoginLDAP handles POST /auth/ldap
func (h *AuthHandler) LoginLDAP(w http.ResponseWriter, r *http.Request) {
	var req ldapReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err, "invalid payload")
		return
	}
	pair, user, err := h.authSvc.LoginDirectory(r.Context(), req.Username, req.Password, req.DeviceInfo)
	if err != nil {
		writeError(w, h.logr, err, "directory login failed")
		return
	}
	h.writeTokens(w, pair, user)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	DeviceInfo   string `json:"device_info,omitempty"`
}

// readRefreshToken prefers the cookie over the body
func readRefreshToken(r *http.Request) refreshReq {
	var req refreshReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if cookie, err := r.Cookie(refreshCookie); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	}
	return req
}

// Refresh handles POST /auth/refresh (reads refresh token from cookie OR body)
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req := readRefreshToken(r)
	if req.RefreshToken == "" {
		writeFail(w, http.StatusBadRequest, "refresh token required")
		return
	}

	pair, err := h.authSvc.Refresh(r.Context(), req.RefreshToken, req.DeviceInfo)
	if err != nil {
		h.logr.Warn("refresh failed", zap.Error(err))
		writeError(w, h.logr, err, "refresh failed")
		return
	}
	h.writeTokens(w, pair, nil)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req := readRefreshToken(r)
	if req.RefreshToken == "" {
		writeFail(w, http.StatusBadRequest, "refresh token required")
		return
	}

	if err := h.authSvc.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, h.logr, err, "failed to logout")
		return
	}

	h.setRefreshCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}
