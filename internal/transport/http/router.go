package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/service/auth"
	"github.com/easygametopup/storefront/internal/transport/http/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	OAuth    *OAuthHandler // nil when Google OAuth is not configured
	Catalog  *CatalogHandler
	Purchase *PurchaseHandler
}

// NewRouter wires the gin engine. Purchase and profile routes sit behind
// the access-token middleware; everything else is public.
func NewRouter(h Handlers, authService *auth.Service, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(allowedOrigins, logger))

	router.POST("/api/auth/register", h.Auth.Register)
	router.POST("/api/auth/login", h.Auth.Login)
	router.POST("/api/auth/google", h.Auth.GoogleSignIn)
	router.POST("/api/auth/refresh", h.Auth.Refresh)
	router.POST("/api/auth/logout", h.Auth.Logout)
	router.GET("/api/auth/me", h.Auth.Me)

	if h.OAuth != nil {
		router.GET("/api/auth/google/login", h.OAuth.GoogleLogin)
		router.GET("/api/auth/google/callback", h.OAuth.GoogleCallback)
	}

	router.GET("/api/games", h.Catalog.Games)
	router.GET("/api/products", h.Catalog.Products)

	protected := router.Group("/")
	protected.Use(middleware.RequireAuth(authService))
	{
		protected.PUT("/api/auth/profile", h.Auth.UpdateProfile)
		protected.GET("/api/purchases", h.Purchase.History)
		protected.POST("/api/purchases", h.Purchase.Create)
	}

	return router
}
