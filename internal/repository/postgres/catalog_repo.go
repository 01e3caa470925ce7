package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/easygametopup/storefront/internal/domain"
)

type CatalogRepo struct {
	db *sqlx.DB
}

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// ListGames returns all games ordered by name.
func (r *CatalogRepo) ListGames(ctx context.Context) ([]domain.Game, error) {
	query := `
	SELECT id, name, slug, COALESCE(image_url, '') AS image_url,
		COALESCE(description, '') AS description
	FROM games
	ORDER BY name ASC`

	games := make([]domain.Game, 0)
	if err := r.db.SelectContext(ctx, &games, query); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// ListActiveProducts returns active products newest first, each with its
// game summary. An empty gameID returns products across all games.
func (r *CatalogRepo) ListActiveProducts(ctx context.Context, gameID string) ([]domain.Product, error) {
	query := `
	SELECT p.id, p.game_id, p.title, COALESCE(p.description, '') AS description,
		p.price_npr, COALESCE(p.image_url, '') AS image_url, p.is_active, p.created_at,
		g.id AS g_id, g.name AS g_name, g.slug AS g_slug
	FROM products p
	JOIN games g ON g.id = p.game_id
	WHERE p.is_active = TRUE AND ($1 = '' OR p.game_id = $1)
	ORDER BY p.created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		var g domain.Game
		if err := rows.Scan(
			&p.ID, &p.GameID, &p.Title, &p.Description,
			&p.PriceNPR, &p.ImageURL, &p.IsActive, &p.CreatedAt,
			&g.ID, &g.Name, &g.Slug,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		p.Game = &g
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}

	return products, nil
}

// GetProductByID returns (nil, nil) when no product exists.
func (r *CatalogRepo) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	query := `
	SELECT id, game_id, title, COALESCE(description, '') AS description,
		price_npr, COALESCE(image_url, '') AS image_url, is_active, created_at
	FROM products
	WHERE id = $1`

	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetCouponByCode looks up a coupon by its upper-cased code and returns
// (nil, nil) when none exists.
func (r *CatalogRepo) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	query := `SELECT id, code, discount_percent, product_id FROM coupons WHERE code = $1`

	err := r.db.GetContext(ctx, &coupon, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}
