package handlers

import (
	"time"

	"github.com/SundayYogurt/member_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/helper"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc          services.UserService
	guards       Guards
	cookieSecure bool
	log          *zap.Logger
}

func NewAuthHandler(svc services.UserService, guards Guards, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, guards: guards, cookieSecure: cookieSecure, log: log}
}

func (h *AuthHandler) SetupRoutes(api fiber.Router) {
	auth := api.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/check-user", h.CheckUser)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/set-password", h.SetPassword)
	auth.Post("/forgot-password/verify", h.ForgotPasswordVerify)
	auth.Post("/forgot-password/reset", h.ForgotPasswordReset)

	auth.Get("/me", h.guards.Verified, h.Me)
}

// Register godoc
// @Summary Register a new member (PENDING until an admin verifies)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "registration"
// @Success 201 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, err := h.svc.Register(req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, user)
}

// CheckUser godoc
// @Summary Look up registration and password status by email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.CheckUserRequest true "email"
// @Success 200 {object} dto.APISuccessAny
// @Failure 404 {object} dto.APIError
// @Router /api/auth/check-user [post]
func (h *AuthHandler) CheckUser(ctx *fiber.Ctx) error {
	var req dto.CheckUserRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	resp, err := h.svc.CheckUser(req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

// Login godoc
// @Summary Log in; web clients get a cookie, mobile clients get the token in the body
// @Tags auth
// @Accept json
// @Produce json
// @Param x-client-type header string false "mobile"
// @Param body body dto.UserLogin true "credentials"
// @Success 200 {object} dto.APISuccessLogin
// @Failure 401 {object} dto.APIError
// @Failure 403 {object} dto.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var req dto.UserLogin
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, token, err := h.svc.Login(req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	if middleware.IsMobile(ctx) {
		return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.LoginResponse{Token: token, User: user})
	}

	ctx.Cookie(h.sessionCookie(token, time.Now().Add(helper.SessionTTL), int(helper.SessionTTL.Seconds())))
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.LoginResponse{User: user})
}

// Logout godoc
// @Summary Clear the web session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APISuccessString
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	if !middleware.IsMobile(ctx) {
		ctx.Cookie(h.sessionCookie("", time.Unix(0, 0), -1))
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "logged out")
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time, maxAge int) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// SetPassword godoc
// @Summary Set the first password and security question of a verified member
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SetPasswordRequest true "password"
// @Success 200 {object} dto.APISuccessString
// @Failure 400 {object} dto.APIError
// @Router /api/auth/set-password [post]
func (h *AuthHandler) SetPassword(ctx *fiber.Ctx) error {
	var req dto.SetPasswordRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	if err := h.svc.SetPassword(req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "password set")
}

// ForgotPasswordVerify godoc
// @Summary Answer the security question to obtain a short-lived reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ForgotPasswordVerifyRequest true "answer"
// @Success 200 {object} dto.APISuccessAny
// @Failure 401 {object} dto.APIError
// @Router /api/auth/forgot-password/verify [post]
func (h *AuthHandler) ForgotPasswordVerify(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordVerifyRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	token, err := h.svc.ForgotPasswordVerify(req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.ForgotPasswordVerifyResponse{ResetToken: token})
}

// ForgotPasswordReset godoc
// @Summary Reset the password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.ResetPasswordRequest true "reset"
// @Success 200 {object} dto.APISuccessString
// @Failure 401 {object} dto.APIError
// @Router /api/auth/forgot-password/reset [post]
func (h *AuthHandler) ForgotPasswordReset(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	if err := h.svc.ForgotPasswordReset(req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "password reset")
}

// Me godoc
// @Summary Current verified member
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APISuccessAny
// @Failure 401 {object} dto.APIError
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	return utils.ResponseSuccess(ctx, fiber.StatusOK, middleware.CurrentUser(ctx))
}
