package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shop-service/internal/apperr"
	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Services are the use cases the HTTP API exposes
type Services struct {
	Accounts *service.AccountService
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Orders   *service.OrderService
	Users    *service.UserService
}

// Options tune the HTTP layer
type Options struct {
	ServiceName      string
	DefaultPageLimit int
	MaxPageLimit     int
	// ReadinessChecks are run by /ready, keyed by dependency name
	ReadinessChecks map[string]func(context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	services Services
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, opts Options) *Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = "shop-service"
	}
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = 5
	}
	if opts.MaxPageLimit < opts.DefaultPageLimit {
		opts.MaxPageLimit = opts.DefaultPageLimit
	}
	return &Handler{
		services: services,
		opts:     opts,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.CustomRecovery(h.recoverPanic))
	router.Use(otelgin.Middleware(h.opts.ServiceName))
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.GET("/auth/activate/:token", h.activate)

	router.GET("/categories", h.listCategories)
	router.GET("/categories/:id", h.getCategory)
	router.GET("/categories/:id/products", h.getCategoryProducts)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/products/:id/detail", h.getProductDetail)

	user := router.Group("/", h.authenticate())
	{
		user.GET("/auth/me", h.me)
		user.GET("/auth/logout", h.logout)
		user.PATCH("/auth/update", h.updateProfile)
		user.PATCH("/auth/change-password", h.changePassword)

		user.GET("/carts", h.getCart)
		user.POST("/carts/products", h.addCartProduct)
		user.PATCH("/carts/products", h.updateCartProducts)
		user.DELETE("/carts/products/:id", h.removeCartProduct)

		user.GET("/users/orders", h.listUserOrders)
		user.GET("/users/orders/:id", h.getUserOrder)
		user.POST("/users/orders", h.checkout)
	}

	admin := router.Group("/", h.authenticate(), h.requireRole(models.RoleAdmin))
	{
		admin.POST("/categories", h.createCategory)
		admin.PATCH("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/products", h.createProduct)
		admin.PATCH("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/products/:id/detail", h.createProductDetail)
		admin.PATCH("/products/:id/detail", h.updateProductDetail)
		admin.DELETE("/products/:id/detail", h.deleteProductDetail)

		admin.GET("/orders", h.listOrders)
		admin.GET("/orders/:id", h.getOrder)
		admin.PATCH("/orders/:id", h.updateOrderStatus)

		admin.GET("/users", h.listUsers)
		admin.POST("/users", h.createUser)
		admin.GET("/users/:id", h.getUser)
		admin.PATCH("/users/:id", h.updateUser)
		admin.DELETE("/users/:id", h.deleteUser)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every dependency answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK
	for name, check := range h.opts.ReadinessChecks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"time":   time.Now().Unix(),
	})
}

// listParams reads page, limit and search from the query string
func (h *Handler) listParams(c *gin.Context) store.ListParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = h.opts.DefaultPageLimit
	}
	if limit > h.opts.MaxPageLimit {
		limit = h.opts.MaxPageLimit
	}
	return store.ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// pathID parses a numeric path parameter; on failure the 400 response is already written
func (h *Handler) pathID(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		h.respondError(c, apperr.BadRequest("Invalid "+entity+" ID"))
		return 0, false
	}
	return id, true
}
