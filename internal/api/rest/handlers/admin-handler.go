package handlers

import (
	"github.com/SundayYogurt/member_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	svc    services.AdminService
	reqSvc services.RequestService
	guards Guards
	log    *zap.Logger
}

func NewAdminHandler(svc services.AdminService, reqSvc services.RequestService, guards Guards, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, reqSvc: reqSvc, guards: guards, log: log}
}

func (h *AdminHandler) SetupRoutes(api fiber.Router) {
	admin := api.Group("/admin", h.guards.Verified, h.guards.Admin)

	// Verification
	admin.Get("/table", h.ListUsers)
	admin.Post("/table/verification", h.SetVerification)

	// Profile, committee & role
	admin.Patch("/users/:email", h.UpdateUser)

	// Change requests
	admin.Get("/requests", h.ListPendingRequests)
	admin.Patch("/requests", h.DecideRequest)

	// Obituaries
	admin.Post("/obituaries", h.CreateObituary)
	admin.Get("/obituaries", h.ListObituaries)
}

// ListUsers godoc
// @Summary List members by verification status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, VERIFIED or REJECTED"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} dto.APISuccessAny
// @Failure 403 {object} dto.APIError
// @Router /api/admin/table [get]
func (h *AdminHandler) ListUsers(ctx *fiber.Ctx) error {
	var q dto.ListUsersQuery
	if err := bindQuery(ctx, &q); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	users, total, err := h.svc.ListUsers(q)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"users": users,
		"total": total,
	})
}

// SetVerification godoc
// @Summary Verify or reject a pending registration
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SetVerificationRequest true "decision"
// @Success 200 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Failure 404 {object} dto.APIError
// @Router /api/admin/table/verification [post]
func (h *AdminHandler) SetVerification(ctx *fiber.Ctx) error {
	var req dto.SetVerificationRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, err := h.svc.SetVerification(middleware.CurrentUser(ctx), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

// UpdateUser godoc
// @Summary Edit any member, including committee fields and role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "member email"
// @Param body body dto.AdminUpdateUser true "patch"
// @Success 200 {object} dto.APISuccessAny
// @Failure 404 {object} dto.APIError
// @Router /api/admin/users/{email} [patch]
func (h *AdminHandler) UpdateUser(ctx *fiber.Ctx) error {
	var req dto.AdminUpdateUser
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, err := h.svc.AdminUpdateUser(middleware.CurrentUser(ctx), ctx.Params("email"), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

// ListPendingRequests godoc
// @Summary Pending change requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} dto.APISuccessAny
// @Router /api/admin/requests [get]
func (h *AdminHandler) ListPendingRequests(ctx *fiber.Ctx) error {
	reqs, err := h.reqSvc.ListPending(ctx.QueryInt("limit"), ctx.QueryInt("offset"))
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, reqs)
}

// DecideRequest godoc
// @Summary Approve or reject a change request
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DecideRequest true "decision"
// @Success 200 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Failure 404 {object} dto.APIError
// @Router /api/admin/requests [patch]
func (h *AdminHandler) DecideRequest(ctx *fiber.Ctx) error {
	var req dto.DecideRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	decided, err := h.reqSvc.DecideRequest(middleware.CurrentUser(ctx), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, decided)
}

// CreateObituary godoc
// @Summary Record a member's death and mark them EXPIRED
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateObituaryRequest true "obituary"
// @Success 201 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Failure 404 {object} dto.APIError
// @Router /api/admin/obituaries [post]
func (h *AdminHandler) CreateObituary(ctx *fiber.Ctx) error {
	var req dto.CreateObituaryRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	ob, err := h.reqSvc.CreateObituary(middleware.CurrentUser(ctx), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, ob)
}

// ListObituaries godoc
// @Summary Every obituary, including expired ones
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APISuccessAny
// @Router /api/admin/obituaries [get]
func (h *AdminHandler) ListObituaries(ctx *fiber.Ctx) error {
	obits, err := h.reqSvc.ListObituaries(false)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, obits)
}
