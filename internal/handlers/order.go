package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/david3010/game_shop/internal/logging"
	"github.com/david3010/game_shop/internal/middleware/auth"
	"github.com/david3010/game_shop/internal/models"
	"github.com/david3010/game_shop/internal/mykafka"
	"github.com/david3010/game_shop/internal/service/order"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *mykafka.Producer
}

type OrderResponse struct {
	OrderID   uint               `json:"order_id"`
	Total     float64            `json:"total"`
	Status    string             `json:"status"`
	CreatedAt int64              `json:"created_at"`
	Items     []models.OrderItem `json:"items"`
}

type OrderSummary struct {
	ID        uint    `json:"id"`
	Total     float64 `json:"total"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func orderError(err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	// owner always comes from the token, never from the body
	userID := auth.UserID(c)

	var req struct {
		Items []order.Line `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, items, err := h.Svc.Create(ctx, userID, req.Items)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": o.ID,
		"total":   o.Total,
	})

	l.Info("create_order_success", "order_id", o.ID)
	return c.JSON(http.StatusCreated, OrderResponse{
		OrderID:   o.ID,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Items:     items,
	})
}

func (h *OrderHandler) GetUserOrders(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if !auth.CanAccessUser(c, uint(id)) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed")
	}

	orders, err := h.Svc.ListByUser(c.Request().Context(), uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{
			ID:        o.ID,
			Total:     o.Total,
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, items, err := h.Svc.Get(c.Request().Context(), uint(id), auth.UserID(c), auth.IsAdmin(c))
	if err != nil {
		return orderError(err)
	}

	return c.JSON(http.StatusOK, OrderResponse{
		OrderID:   o.ID,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		Items:     items,
	})
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), auth.UserID(c), auth.IsAdmin(c), req.Status)
	if err != nil {
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_updated",
		"userID":  o.UserID,
		"orderID": o.ID,
		"status":  o.Status,
	})

	return c.JSON(http.StatusOK, OrderSummary{
		ID:        o.ID,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	userID := auth.UserID(c)
	if err := h.Svc.Cancel(c.Request().Context(), uint(id), userID, auth.IsAdmin(c)); err != nil {
		return orderError(err)
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"userID":  userID,
		"orderID": uint(id),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "order cancelled"})
}
