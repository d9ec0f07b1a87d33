package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"   json:"is_admin"`
}

type Game struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"not null"                 json:"title"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Stock       uint    `json:"stock"`
}

type Order struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint    `gorm:"index;not null"           json:"user_id"`
	Total     float64 `gorm:"not null"                 json:"total"`
	Status    string  `gorm:"not null"                 json:"status"`
	CreatedAt int64   `gorm:"not null"                 json:"created_at"`
}

// OrderItem records the unit price at order time, independent of later
// catalog changes.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	GameID    uint    `gorm:"not null"                 json:"game_id"`
	Quantity  uint    `gorm:"check:quantity>0"         json:"quantity"`
	UnitPrice float64 `gorm:"not null"                 json:"unit_price"`
}

const OrderStatusPending = "pending"
