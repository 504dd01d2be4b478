package handlers

import (
	"argos-engine/internal/apperr"
	"argos-engine/internal/dto"
	"argos-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgNoQuestion = "No question provided"

type AskHandler struct {
	askService *service.AskService
	logger     *zap.Logger
}

func NewAskHandler(askService *service.AskService, logger *zap.Logger) *AskHandler {
	return &AskHandler{
		askService: askService,
		logger:     logger,
	}
}

// Ask godoc
// @Summary Ask a question about the ledger
// @Description Translates a natural-language question into a query plan, runs it and returns a text answer, a chart link or an error envelope
// @Tags ask
// @Accept json
// @Produce json
// @Param request body dto.AskRequest true "Question"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/ask [post]
func (h *AskHandler) Ask(c *fiber.Ctx) error {
	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		// An unreadable body carries no question.
		h.logger.Debug("Failed to parse ask request", zap.Error(err))
		req.Question = ""
	}

	env, err := h.askService.Ask(c.UserContext(), req.Question)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msgNoQuestion})
		}
		h.logger.Error("Ask failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to answer question"})
	}

	return c.JSON(dto.AskResponse{
		Type: string(env.Kind),
		Data: env.Payload,
	})
}
