package purchase

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found or inactive")
	ErrMissingFields   = errors.New("productId and ingameId are required")
)

type CatalogRepository interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error)
	ListUserPurchases(ctx context.Context, userID string) ([]domain.Purchase, error)
}

// CreateInput is the validated request body for a new purchase.
type CreateInput struct {
	ProductID       string
	IngameID        string
	IngameName      string
	CouponCode      string
	PaymentProofURL string
}

type Service struct {
	catalog   CatalogRepository
	purchases PurchaseRepository
	logger    *zap.Logger
}

func NewService(catalog CatalogRepository, purchases PurchaseRepository, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, purchases: purchases, logger: logger}
}

// Create records a pending purchase. A coupon applies only when its code
// resolves, it is either unscoped or scoped to the purchased product, and
// its discount is positive; an unusable coupon is silently ignored rather
// than rejected.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*domain.Purchase, error) {
	if input.ProductID == "" || input.IngameID == "" {
		return nil, ErrMissingFields
	}

	product, err := s.catalog.GetProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	amount := product.PriceNPR
	var couponID *string

	if input.CouponCode != "" {
		code := strings.ToUpper(strings.TrimSpace(input.CouponCode))
		coupon, err := s.catalog.GetCouponByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if coupon != nil && coupon.DiscountPercent > 0 {
			scopeOK := coupon.ProductID == nil || *coupon.ProductID == product.ID
			if scopeOK {
				discounted := amount - amount*coupon.DiscountPercent/100
				amount = math.Max(0, math.Round(discounted*100)/100)
				couponID = &coupon.ID
			}
		}
	}

	purchase := &domain.Purchase{
		UserID:          userID,
		ProductID:       product.ID,
		CouponID:        couponID,
		IngameID:        input.IngameID,
		IngameName:      input.IngameName,
		PaymentProofURL: input.PaymentProofURL,
		AmountPaidNPR:   amount,
	}

	created, err := s.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase created",
		zap.String("purchase_id", created.ID),
		zap.String("product_id", created.ProductID))
	return created, nil
}

// History returns the caller's purchases, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return s.purchases.ListUserPurchases(ctx, userID)
}
