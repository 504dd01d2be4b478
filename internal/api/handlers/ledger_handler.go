package handlers

import (
	"time"

	"argos-engine/internal/dto"
	"argos-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	trendService  *service.TrendService
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

func NewLedgerHandler(trendService *service.TrendService, ledgerService *service.LedgerService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		trendService:  trendService,
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Trends godoc
// @Summary Dashboard trends
// @Description Monthly totals keyed by calendar month name and totals per category
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.TrendsResponse
// @Router /api/trends [get]
func (h *LedgerHandler) Trends(c *fiber.Ctx) error {
	summary := h.trendService.Summary()

	resp := dto.TrendsResponse{
		MonthlyTrend:  make([]dto.MonthTotalResponse, 0, len(summary.MonthlyTrend)),
		CategorySplit: make([]dto.CategoryTotalResponse, 0, len(summary.CategorySplit)),
	}
	for _, m := range summary.MonthlyTrend {
		resp.MonthlyTrend = append(resp.MonthlyTrend, dto.MonthTotalResponse{Month: m.Month, Total: m.Total})
	}
	for _, cat := range summary.CategorySplit {
		resp.CategorySplit = append(resp.CategorySplit, dto.CategoryTotalResponse{Name: cat.Name, Value: cat.Value})
	}

	return c.JSON(resp)
}

// Refresh godoc
// @Summary Reload the ledger
// @Description Rebuilds the in-memory ledger from the data source. A failing source keeps the previous snapshot and sets degraded.
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Router /api/refresh [post]
func (h *LedgerHandler) Refresh(c *fiber.Ctx) error {
	res := h.ledgerService.Refresh(c.UserContext())

	return c.JSON(dto.RefreshResponse{
		Rows:     res.Rows,
		Degraded: res.Degraded,
		LoadedAt: res.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// Health godoc
// @Summary Health check
// @Tags ledger
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *LedgerHandler) Health(c *fiber.Ctx) error {
	status := h.ledgerService.Status()

	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Source:     status.Source,
		Rows:       status.Rows,
		TotalSpent: status.Total,
		LoadedAt:   status.LoadedAt.UTC().Format(time.RFC3339),
	})
}
