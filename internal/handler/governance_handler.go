package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/athlete-assessment-api/internal/dto"
	"github.com/noah-isme/athlete-assessment-api/internal/service"
	"github.com/noah-isme/athlete-assessment-api/internal/utils"
)

// GovernanceHandler exposes soft delete, restore, and audit trail endpoints.
type GovernanceHandler struct {
	archive service.ArchiveService
	audit   service.AuditService
	logger  zerolog.Logger
}

// NewGovernanceHandler constructs the handler.
func NewGovernanceHandler(archive service.ArchiveService, audit service.AuditService, logger zerolog.Logger) *GovernanceHandler {
	return &GovernanceHandler{
		archive: archive,
		audit:   audit,
		logger:  logger.With().Str("component", "governance_handler").Logger(),
	}
}

// Register attaches read routes and the mutations, which are wrapped by
// mutate (typically a rate limiter).
func (h *GovernanceHandler) Register(router fiber.Router, mutate ...fiber.Handler) {
	router.Get("/restorable", h.listRestorable)
	router.Get("/audit", h.listAudit)
	router.Get("/records/:id/state", h.state)

	chain := func(handler fiber.Handler) []fiber.Handler {
		return append(append(make([]fiber.Handler, 0, len(mutate)+1), mutate...), handler)
	}

	router.Post("/restore/:entryId", chain(h.restoreEntry)...)
	router.Post("/records/:id/restore", chain(h.restore)...)
	router.Delete("/records/:id", chain(h.delete)...)
}

func (h *GovernanceHandler) listRestorable(c *fiber.Ctx) error {
	result, err := h.archive.ListRestorable(c.UserContext())
	if err != nil {
		return respondServiceError(c, h.logger, err, "list restorable records")
	}

	ambiguous := 0
	for _, item := range result.Items {
		if item.Ambiguous {
			ambiguous++
		}
	}

	meta := fiber.Map{
		"total":     len(result.Items),
		"ambiguous": ambiguous,
		"cacheHit":  result.CacheHit,
	}
	return utils.OK(c, result.Items, "restorable records retrieved", meta)
}

func (h *GovernanceHandler) restoreEntry(c *fiber.Ctx) error {
	entryID, err := parseUintParam(c, "entryId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.archive.RestoreEntry(c.UserContext(), entryID, auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "restore record")
	}
	return utils.OK(c, result, "record restored", nil)
}

func (h *GovernanceHandler) restore(c *fiber.Ctx) error {
	result, err := h.archive.Restore(c.UserContext(), c.Params("id"), auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "restore record")
	}
	return utils.OK(c, result, "record restored", nil)
}

func (h *GovernanceHandler) delete(c *fiber.Ctx) error {
	result, err := h.archive.Delete(c.UserContext(), c.Params("id"), auditActorFromContext(c))
	if err != nil {
		return respondServiceError(c, h.logger, err, "delete record")
	}
	return utils.OK(c, result, "record archived", nil)
}

func (h *GovernanceHandler) state(c *fiber.Ctx) error {
	result, err := h.archive.State(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, h.logger, err, "inspect record")
	}
	return utils.OK(c, result, "record state retrieved", nil)
}

func (h *GovernanceHandler) listAudit(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	req := dto.AuditListRequest{
		Actions:   splitAndTrim(strings.ToUpper(c.Query("action"))),
		ActorID:   c.Query("actorId"),
		SubjectID: c.Query("subjectId"),
		Limit:     limit,
		Offset:    offset,
	}

	result, err := h.audit.List(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, h.logger, err, "list audit entries")
	}

	meta := fiber.Map{
		"total":  result.Total,
		"limit":  req.Limit,
		"offset": req.Offset,
	}
	return utils.OK(c, result.Items, "audit entries retrieved", meta)
}
