package handlers

import (
	"github.com/SundayYogurt/member_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/member_service/internal/dto"
	"github.com/SundayYogurt/member_service/internal/helper/utils"
	"github.com/SundayYogurt/member_service/internal/services"
	"github.com/SundayYogurt/member_service/internal/xerrors"
	pkgutils "github.com/SundayYogurt/member_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc    services.UserService
	reqSvc services.RequestService
	guards Guards
	log    *zap.Logger
}

func NewUserHandler(svc services.UserService, reqSvc services.RequestService, guards Guards, log *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, reqSvc: reqSvc, guards: guards, log: log}
}

func (h *UserHandler) SetupRoutes(api fiber.Router) {
	user := api.Group("/user", h.guards.Verified)

	// Profile
	user.Patch("/profile", h.UpdateProfile)
	user.Post("/photo", h.UploadPhoto)

	// Change requests
	user.Post("/request", h.CreateRequest)
	user.Get("/request", h.LatestRequest)
	user.Patch("/request", h.DismissRequest)

	// Public directory
	api.Get("/committee", h.ListCommittee)
	api.Get("/obituaries", h.ListObituaries)
}

// UpdateProfile godoc
// @Summary Edit the caller's own profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateUserProfile true "patch"
// @Success 200 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Router /api/user/profile [patch]
func (h *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	var req dto.UpdateUserProfile
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, err := h.svc.UpdateOwnProfile(middleware.CurrentUser(ctx), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

// UploadPhoto godoc
// @Summary Upload the caller's profile photo (jpg/jpeg/png/webp, max 5MB)
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "image"
// @Success 200 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Router /api/user/photo [post]
func (h *UserHandler) UploadPhoto(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "file is required")
	}
	if file.Size > services.PhotoMaxBytes {
		return utils.ResponseFromError(ctx, h.log, xerrors.ErrImageTooLarge)
	}

	f, err := file.Open()
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	defer f.Close()

	data, err := pkgutils.ReadAllLimit(f, services.PhotoMaxBytes)
	if err != nil {
		if err == pkgutils.ErrTooLarge {
			return utils.ResponseFromError(ctx, h.log, xerrors.ErrImageTooLarge)
		}
		return utils.ResponseFromError(ctx, h.log, err)
	}

	user, err := h.svc.UploadPhoto(ctx.UserContext(), middleware.CurrentUser(ctx), file.Filename, data)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, user)
}

// CreateRequest godoc
// @Summary Submit a transfer, promotion or retirement request
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateChangeRequest true "request"
// @Success 201 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Router /api/user/request [post]
func (h *UserHandler) CreateRequest(ctx *fiber.Ctx) error {
	var req dto.CreateChangeRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	created, err := h.reqSvc.CreateRequest(middleware.CurrentUser(ctx), req)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, created)
}

// LatestRequest godoc
// @Summary The caller's most recent request
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APISuccessAny
// @Failure 404 {object} dto.APIError
// @Router /api/user/request [get]
func (h *UserHandler) LatestRequest(ctx *fiber.Ctx) error {
	req, err := h.reqSvc.LatestForUser(middleware.CurrentUser(ctx))
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, req)
}

// DismissRequest godoc
// @Summary Hide the decision notification of one of the caller's requests
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DismissRequest true "request id"
// @Success 200 {object} dto.APISuccessString
// @Failure 403 {object} dto.APIError
// @Router /api/user/request [patch]
func (h *UserHandler) DismissRequest(ctx *fiber.Ctx) error {
	var req dto.DismissRequest
	if err := bindBody(ctx, &req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	if err := h.reqSvc.DismissRequest(middleware.CurrentUser(ctx), req); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "dismissed")
}

// ListCommittee godoc
// @Summary State or district committee members
// @Tags directory
// @Produce json
// @Param type query string true "STATE or DISTRICT"
// @Param district query string false "position district"
// @Success 200 {object} dto.APISuccessAny
// @Failure 400 {object} dto.APIError
// @Router /api/committee [get]
func (h *UserHandler) ListCommittee(ctx *fiber.Ctx) error {
	var q dto.CommitteeQuery
	if err := bindQuery(ctx, &q); err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}

	members, err := h.svc.ListCommittee(q)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, members)
}

// ListObituaries godoc
// @Summary Obituaries still inside their display window
// @Tags directory
// @Produce json
// @Success 200 {object} dto.APISuccessAny
// @Router /api/obituaries [get]
func (h *UserHandler) ListObituaries(ctx *fiber.Ctx) error {
	obits, err := h.reqSvc.ListObituaries(true)
	if err != nil {
		return utils.ResponseFromError(ctx, h.log, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, obits)
}
