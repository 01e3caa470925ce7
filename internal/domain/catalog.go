package domain

import "time"

type Game struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	ImageURL    string `db:"image_url" json:"image_url,omitempty"`
	Description string `db:"description" json:"description,omitempty"`
}

type Product struct {
	ID          string    `db:"id" json:"id"`
	GameID      string    `db:"game_id" json:"game_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	PriceNPR    float64   `db:"price_npr" json:"price_npr"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	IsActive    bool      `db:"is_active" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"-"`

	// Joined game summary, populated by the catalog repository.
	Game *Game `db:"-" json:"game,omitempty"`
}

// Coupon discounts a product price. A nil ProductID means the code applies
// to any product.
type Coupon struct {
	ID              string  `db:"id" json:"id"`
	Code            string  `db:"code" json:"code"`
	DiscountPercent float64 `db:"discount_percent" json:"discount_percent"`
	ProductID       *string `db:"product_id" json:"-"`
}
