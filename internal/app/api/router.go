package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/orders-api/internal/platform/auth"
)

// RouterConfig collects what the HTTP surface needs.
type RouterConfig struct {
	ServiceName string
	Orders      *OrdersAPI
	Auth        auth.Config
	// Metrics serves /metrics; nil disables the endpoint.
	Metrics http.Handler
	// AllowedOrigins enables CORS for browser clients; empty disables it.
	AllowedOrigins []string
}

// NewRouter builds the gin engine with tracing, auth, health and metrics routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(cfg.AllowedOrigins))
	}

	authenticator := auth.NewAuthenticator(cfg.Auth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", authenticator.Require(auth.RoleActuator), gin.WrapH(cfg.Metrics))
	}

	if cfg.Orders != nil {
		orders := router.Group("/api")
		orders.GET("", authenticator.Require(auth.RoleAdmin), cfg.Orders.ListOrders)
		orders.GET("/:id", authenticator.Require(auth.RoleAdmin), cfg.Orders.GetOrder)
		orders.POST("", authenticator.Require(auth.RoleCustomer), cfg.Orders.CreateOrder)
	}
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
