package handlers

import (
	"finpulse/internal/dto"
	"finpulse/internal/models"
	"finpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultTransactionCount = 50

type AnalysisHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

func NewAnalysisHandler(pipeline *service.PipelineService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *AnalysisHandler) RunAnalysis(c *fiber.Ctx) error {
	var req dto.RunAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	var scenario models.Scenario
	switch req.Scenario {
	case "CRITICAL":
		scenario = models.ScenarioCritical
	case "STABLE", "":
		scenario = models.ScenarioStable
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scenario",
		})
	}

	count := req.Count
	if count <= 0 {
		count = defaultTransactionCount
	}

	report, err := h.pipeline.RunScenario(c.Context(), req.UserID, scenario, count)
	if err != nil {
		h.logger.Error("Failed to run analysis", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to run analysis",
		})
	}

	return c.JSON(report)
}

func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User ID is required",
		})
	}

	report, err := h.pipeline.LatestReport(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No analysis found",
		})
	}

	return c.JSON(report)
}
