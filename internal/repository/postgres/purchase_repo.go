package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easygametopup/storefront/internal/domain"
)

type PurchaseRepo struct {
	db *sqlx.DB
}

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo {
	return &PurchaseRepo{db: db}
}

// CreatePurchase inserts a new purchase in PENDING state.
func (r *PurchaseRepo) CreatePurchase(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	p.ID = uuid.NewString()
	p.Status = domain.PurchasePending
	p.CreatedAt = time.Now()

	query := `
	INSERT INTO purchases (id, user_id, product_id, coupon_id, ingame_id, ingame_name,
		payment_proof_url, amount_paid_npr, status)
	VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.ProductID, p.CouponID, p.IngameID, p.IngameName,
		p.PaymentProofURL, p.AmountPaidNPR, p.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	return p, nil
}

// ListUserPurchases returns the user's purchases newest first, each with
// product, game and coupon summaries.
func (r *PurchaseRepo) ListUserPurchases(ctx context.Context, userID string) ([]domain.Purchase, error) {
	query := `
	SELECT pu.id, pu.user_id, pu.product_id, pu.coupon_id, pu.ingame_id,
		COALESCE(pu.ingame_name, '') AS ingame_name,
		COALESCE(pu.payment_proof_url, '') AS payment_proof_url,
		pu.amount_paid_npr, pu.status, pu.created_at,
		pr.id, pr.title, pr.price_npr,
		g.id, g.name,
		co.code, co.discount_percent
	FROM purchases pu
	JOIN products pr ON pr.id = pu.product_id
	JOIN games g ON g.id = pr.game_id
	LEFT JOIN coupons co ON co.id = pu.coupon_id
	WHERE pu.user_id = $1
	ORDER BY pu.created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0)
	for rows.Next() {
		var pu domain.Purchase
		var pr domain.Product
		var g domain.Game
		var couponCode sql.NullString
		var couponDiscount sql.NullFloat64

		if err := rows.Scan(
			&pu.ID, &pu.UserID, &pu.ProductID, &pu.CouponID, &pu.IngameID,
			&pu.IngameName, &pu.PaymentProofURL, &pu.AmountPaidNPR, &pu.Status, &pu.CreatedAt,
			&pr.ID, &pr.Title, &pr.PriceNPR,
			&g.ID, &g.Name,
			&couponCode, &couponDiscount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}

		pr.Game = &g
		pu.Product = &pr
		if couponCode.Valid {
			pu.Coupon = &domain.Coupon{
				Code:            couponCode.String,
				DiscountPercent: couponDiscount.Float64,
			}
		}
		purchases = append(purchases, pu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase rows: %w", err)
	}

	return purchases, nil
}
