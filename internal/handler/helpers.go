package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/athlete-assessment-api/internal/middleware"
	"github.com/noah-isme/athlete-assessment-api/internal/service"
	"github.com/noah-isme/athlete-assessment-api/internal/utils"
)

const archiveNotFoundMessage = "archived data could not be found; it may predate the archive feature"

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func auditActorFromContext(c *fiber.Ctx) service.AuditActor {
	actor := service.AuditActor{}
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok {
		actor.ID = id
	}
	if name, ok := c.Locals(middleware.LocalUserName).(string); ok {
		actor.Name = name
	}
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		actor.Role = role
	}
	return actor
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// respondServiceError maps service sentinels onto HTTP statuses. Unknown
// errors are logged and reported as 500.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	var stepErr *service.StepError

	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrUnknownDomain), errors.Is(err, service.ErrInvalidDomainPayload):
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrNotDeletionEntry):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrArchiveNotFound):
		return utils.SendError(c, fiber.StatusNotFound, archiveNotFoundMessage)
	case errors.Is(err, service.ErrAssessmentNotFound), errors.Is(err, service.ErrAuditEntryNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAmbiguousMatch):
		return utils.SendError(c, fiber.StatusConflict, "several archived records share this name; restore by record id instead")
	case errors.Is(err, service.ErrStoreUnavailable):
		event := requestLogger(logger, c).Warn().Err(err).Str("action", action)
		var details interface{}
		if errors.As(err, &stepErr) {
			event = event.Str("step", stepErr.Step).Strs("completed", stepErr.Completed)
			details = fiber.Map{"step": stepErr.Step, "completed": stepErr.Completed}
		}
		event.Msg("store unavailable")
		c.Set(fiber.HeaderRetryAfter, "5")
		return utils.Fail(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable; retry the request", details)
	default:
		requestLogger(logger, c).Error().Err(err).Str("action", action).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}
