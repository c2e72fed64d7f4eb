package handler

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/render"
	"github.com/saferoute-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// RouteService - то, что нужно обработчику от SafeRouteUseCase
type RouteService interface {
	FindSafestRoute(ctx context.Context, req dto.RouteRequest) (*dto.RouteResponse, error)
	Status(ctx context.Context) *dto.GraphStatusResponse
}

// RouteHandler обрабатывает запросы на поиск безопасного маршрута
type RouteHandler struct {
	routeUC  RouteService
	renderer *render.HTMLRenderer
	logger   *zap.Logger
}

// NewRouteHandler создает новый экземпляр RouteHandler
func NewRouteHandler(routeUC RouteService, renderer *render.HTMLRenderer, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC:  routeUC,
		renderer: renderer,
		logger:   logger,
	}
}

// FindSafestRoute godoc
// @Summary Самый безопасный пешеходный маршрут
// @Description Привязывает точки к ближайшим узлам графа и ищет путь минимальной стоимости с учетом преступлений, камер, полиции, а ночью - освещения и заведений.
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.RouteRequest true "Начальная и конечная точки, режим day|night|auto"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/routes/safest [post]
func (h *RouteHandler) FindSafestRoute(c *fiber.Ctx) error {
	start := time.Now()

	req, err := parseRouteRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.routeUC.FindSafestRoute(c.Context(), req)
	if err != nil {
		h.logger.Warn("Failed to find safest route", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Nodes),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// FindSafestRouteMap godoc
// @Summary Маршрут на карте
// @Description Тот же запрос, что и /routes/safest, но ответ - HTML-страница Leaflet с маршрутом.
// @Tags Routes
// @Accept json
// @Produce html
// @Param request body dto.RouteRequest true "Начальная и конечная точки, режим day|night|auto"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/routes/safest/map [post]
func (h *RouteHandler) FindSafestRouteMap(c *fiber.Ctx) error {
	req, err := parseRouteRequest(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.routeUC.FindSafestRoute(c.Context(), req)
	if err != nil {
		h.logger.Warn("Failed to find safest route", zap.Error(err))
		return utils.SendError(c, err)
	}

	var buf bytes.Buffer
	err = h.renderer.Render(&buf, render.RouteMap{
		Title:     "Safest route - " + result.Place,
		Mode:      result.Mode,
		Start:     result.Start,
		End:       result.End,
		Path:      result.Coordinates,
		Cost:      result.TotalCost,
		DistanceM: result.DistanceM,
	})
	if err != nil {
		h.logger.Error("Failed to render route map", zap.Error(err))
		return utils.SendError(c, errors.Wrap(errors.ErrInternalServer, err, "failed to render map"))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// GetGraphStatus godoc
// @Summary Состояние графа
// @Description Место, размер базового графа, отпечаток и готовые варианты (day/night).
// @Tags Graph
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.GraphStatusResponse}
// @Router /api/v1/graph/status [get]
func (h *RouteHandler) GetGraphStatus(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.routeUC.Status(c.Context()), nil)
}

func parseRouteRequest(c *fiber.Ctx) (dto.RouteRequest, error) {
	var req dto.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return req, errors.Wrap(errors.ErrValidation, err, "invalid request body")
	}
	return req, nil
}
