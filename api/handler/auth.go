package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	sessionUC "github.com/fastygo/taskboard/usecase/session"
)

type AuthHandler struct {
	baseHandler
	auth     *authUC.UseCase
	sessions *sessionUC.UseCase
}

func NewAuthHandler(auth *authUC.UseCase, sessions *sessionUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		auth:        auth,
		sessions:    sessions,
	}
}

// @Summary Register a local account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.auth.Register(stdCtx, authUC.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.signIn(stdCtx, ctx, http.StatusCreated, user)
}

// @Summary Sign in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.auth.Login(stdCtx, authUC.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.signIn(stdCtx, ctx, http.StatusOK, user)
}

// @Summary Sign in with an OAuth provider code
// @Tags auth
// @Router /api/v1/auth/oauth [post]
func (h *AuthHandler) OAuth(ctx *fasthttp.RequestCtx) {
	var req transport.OAuthRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.auth.OAuth(stdCtx, authUC.OAuthInput{Provider: req.Provider, Code: req.Code})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.signIn(stdCtx, ctx, http.StatusOK, user)
}

// @Summary Current user
// @Tags auth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	userID, _, ok := h.subject(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.auth.CurrentUser(stdCtx, userID)
	if err != nil {
		// the session outlived its user
		if errors.Is(err, domain.ErrUserNotFound) {
			err = domain.ErrUnauthorized
		}
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Refresh the current session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	userID, sessionID, ok := h.subject(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	issued, err := h.sessions.Refresh(stdCtx, sessionUC.Principal{UserID: userID, SessionID: sessionID})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TokenResponse{Token: issued.Token, ExpiresAt: issued.Session.ExpiresAt})
}

// @Summary End the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	_, sessionID, ok := h.subject(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.sessions.Revoke(stdCtx, sessionID); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"success": true})
}

// signIn opens a session for user and writes the auth response.
func (h *AuthHandler) signIn(stdCtx context.Context, ctx *fasthttp.RequestCtx, status int, user *domain.AuthUser) {
	issued, err := h.sessions.Issue(stdCtx, user.ID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, status, transport.AuthResponse{
		User:      user,
		Token:     issued.Token,
		ExpiresAt: issued.Session.ExpiresAt,
	})
}
