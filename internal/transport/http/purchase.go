package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/service/purchase"
	"github.com/easygametopup/storefront/internal/transport/http/middleware"
)

type PurchaseHandler struct {
	purchases *purchase.Service
	logger    *zap.Logger
}

func NewPurchaseHandler(purchaseService *purchase.Service, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchaseService, logger: logger}
}

type createPurchaseRequest struct {
	ProductID       string `json:"productId" binding:"required"`
	IngameID        string `json:"ingameId" binding:"required"`
	IngameName      string `json:"ingameName"`
	CouponCode      string `json:"couponCode"`
	PaymentProofURL string `json:"paymentProofUrl"`
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId and ingameId are required"})
		return
	}

	created, err := h.purchases.Create(c.Request.Context(), userID, purchase.CreateInput{
		ProductID:       req.ProductID,
		IngameID:        req.IngameID,
		IngameName:      req.IngameName,
		CouponCode:      req.CouponCode,
		PaymentProofURL: req.PaymentProofURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, purchase.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid product"})
		default:
			h.logger.Error("purchase creation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create purchase"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": created})
}

func (h *PurchaseHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	purchases, err := h.purchases.History(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch purchase history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
