package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/service/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService, logger: logger}
}

func (h *CatalogHandler) Games(c *gin.Context) {
	games, err := h.catalog.ListGames(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *CatalogHandler) Products(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("gameId"))
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
