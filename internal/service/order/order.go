package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/david3010/game_shop/internal/models"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrInsufficientStock = errors.New("insufficient stock") // 400
)

type Service struct {
	DB *gorm.DB
}

type Line struct {
	GameID   uint `json:"game_id"`
	Quantity uint `json:"quantity"`
}

// Create places an order for userID. Stock checks, stock decrements and
// row creation happen in one transaction: a failing line rolls back
// every previous decrement.
func (s *Service) Create(ctx context.Context, userID uint, lines []Line) (*models.Order, []models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: order must contain at least one game", ErrValidation)
	}
	for i := range lines {
		if lines[i].GameID == 0 {
			return nil, nil, fmt.Errorf("%w: game_id required", ErrValidation)
		}
		if lines[i].Quantity < 1 {
			return nil, nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
	}

	var (
		order models.Order
		items []models.OrderItem
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		items = items[:0]

		for _, ln := range lines {
			var game models.Game
			if err := tx.First(&game, ln.GameID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: game %d", ErrNotFound, ln.GameID)
				}
				return err
			}

			// guarded decrement: concurrent orders cannot jointly oversell
			res := tx.Model(&models.Game{}).
				Where("id = ? AND stock >= ?", ln.GameID, ln.Quantity).
				Update("stock", gorm.Expr("stock - ?", ln.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, game.Title)
			}

			total += game.Price * float64(ln.Quantity)
			items = append(items, models.OrderItem{
				GameID:    game.ID,
				Quantity:  ln.Quantity,
				UnitPrice: game.Price,
			})
		}

		order = models.Order{
			UserID:    userID,
			Total:     total,
			Status:    models.OrderStatusPending,
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &order, items, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, orderID, userID uint, admin bool) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, nil, err
	}
	if order.UserID != userID && !admin {
		return nil, nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}

	var items []models.OrderItem
	if err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &order, items, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, userID uint, admin bool, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status required", ErrValidation)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if order.UserID != userID && !admin {
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}

	order.Status = status
	if err := s.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel removes the order and its items and restores every referenced
// game's stock, all in one transaction.
func (s *Service) Cancel(ctx context.Context, orderID, userID uint, admin bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if order.UserID != userID && !admin {
			return fmt.Errorf("%w: order %d", ErrForbidden, orderID)
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Model(&models.Game{}).
				Where("id = ?", it.GameID).
				Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}
