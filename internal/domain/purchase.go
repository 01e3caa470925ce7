package domain

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "PENDING"
	PurchaseCompleted PurchaseStatus = "COMPLETED"
	PurchaseRejected  PurchaseStatus = "REJECTED"
)

type Purchase struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"-"`
	ProductID       string         `db:"product_id" json:"-"`
	CouponID        *string        `db:"coupon_id" json:"-"`
	IngameID        string         `db:"ingame_id" json:"ingame_id"`
	IngameName      string         `db:"ingame_name" json:"ingame_name,omitempty"`
	PaymentProofURL string         `db:"payment_proof_url" json:"payment_proof_url,omitempty"`
	AmountPaidNPR   float64        `db:"amount_paid_npr" json:"amount_paid_npr"`
	Status          PurchaseStatus `db:"status" json:"status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`

	// Joined summaries, populated by the purchase repository.
	Product *Product `db:"-" json:"product,omitempty"`
	Coupon  *Coupon  `db:"-" json:"coupon,omitempty"`
}
