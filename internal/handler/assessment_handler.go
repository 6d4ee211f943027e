package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/middleware"
	"github.com/noah-isme/athlete-assessment-api/internal/service"
	"github.com/noah-isme/athlete-assessment-api/internal/utils"
)

// AssessmentHandler exposes assessment record endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches routes. Recompute sweeps are admin only.
func (h *AssessmentHandler) Register(router fiber.Router) {
	adminOnly := middleware.AuthOptions{Role: middleware.AuthRoleAdmin}

	router.Post("", h.create)
	router.Get("", h.list)
	router.Post("/recompute", middleware.WithAuth(h.recomputeAll, adminOnly))
	router.Get("/:id", h.get)
	router.Put("/:id/domains/:domain", h.saveDomain)
	router.Post("/:id/recompute", middleware.WithAuth(h.recompute, adminOnly))
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var req dto.AssessmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Create(c.UserContext(), req, auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "create assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment created", result)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.AssessmentListRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	}

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, h.logger, err, "list assessments")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"status": req.Status,
			"search": req.Search,
		},
	}
	return utils.OK(c, result.Items, "assessments retrieved", meta)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, h.logger, err, "fetch assessment")
	}
	return utils.OK(c, result, "assessment retrieved", nil)
}

func (h *AssessmentHandler) saveDomain(c *fiber.Ctx) error {
	var req dto.DomainSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SaveDomain(c.UserContext(), c.Params("id"), c.Params("domain"), req, auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "save domain")
	}
	return utils.OK(c, result, "domain saved", nil)
}

func (h *AssessmentHandler) recompute(c *fiber.Ctx) error {
	result, err := h.service.Recompute(c.UserContext(), c.Params("id"), auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "recompute assessment")
	}

	message := "status cache up to date"
	if result.Corrected {
		message = "status cache corrected"
	}
	return utils.OK(c, result, message, nil)
}

func (h *AssessmentHandler) recomputeAll(c *fiber.Ctx) error {
	result, err := h.service.RecomputeAll(c.UserContext(), auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "recompute assessments")
	}
	return utils.OK(c, result, "status cache sweep finished", nil)
}
