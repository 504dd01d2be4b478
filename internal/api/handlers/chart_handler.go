package handlers

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"argos-engine/internal/chart"
	"argos-engine/internal/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChartHandler struct {
	dir    string
	logger *zap.Logger
}

func NewChartHandler(dir string, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{
		dir:    dir,
		logger: logger,
	}
}

// Serve godoc
// @Summary Rendered chart
// @Description Serves a chart image previously produced by /api/ask
// @Tags charts
// @Produce png
// @Param name path string true "Chart file name"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /charts/{name} [get]
func (h *ChartHandler) Serve(c *fiber.Ctx) error {
	requested, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid chart name"})
	}

	name, err := chart.SafeName(requested)
	if err != nil {
		h.logger.Warn("Rejected chart request", zap.String("name", requested), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid chart name"})
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Error("Failed to stat chart", zap.String("path", path), zap.Error(err))
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Chart not found"})
	}

	return c.SendFile(path)
}
