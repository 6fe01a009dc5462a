package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"swiftpos/internal/cart"
	"swiftpos/internal/catalog"
	"swiftpos/internal/service"
	"swiftpos/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	terminal *service.TerminalService
	checks   map[string]ReadinessCheck
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(terminal *service.TerminalService) *Handler {
	return &Handler{
		terminal: terminal,
		checks:   make(map[string]ReadinessCheck),
		logger:   util.GetLogger(),
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", h.getCatalog)
		v1.GET("/promotions", h.getPromotions)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addItem)
		v1.GET("/cart/items/:lineId", h.getLine)
		v1.POST("/cart/custom-items", h.addCustomItem)
		v1.PUT("/cart/items/:lineId/quantity", h.setQuantity)
		v1.PUT("/cart/items/:lineId/price", h.setPrice)
		v1.DELETE("/cart/items/:lineId", h.removeItem)

		v1.POST("/checkout", h.checkout)
		v1.GET("/receipt", h.getReceipt)
		v1.DELETE("/receipt", h.dismissReceipt)

		v1.POST("/upsell", h.requestUpsell)
		v1.GET("/upsell", h.getUpsell)

		v1.GET("/dashboard", h.getDashboard)
		v1.POST("/dashboard/analysis", h.analyzeShift)
		v1.GET("/audit", h.getAuditLog)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck probes every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"details": failed,
			"time":    time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.terminal.Catalog()})
}

func (h *Handler) getPromotions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"promotions": h.terminal.Promotions()})
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal.Cart())
}

func (h *Handler) getLine(c *gin.Context) {
	line, err := h.terminal.Line(c.Param("lineId"))
	if errors.Is(err, cart.ErrLineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Line not found",
			"details": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get line",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, line)
}

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity *int   `json:"quantity"`
}

func (h *Handler) addItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	res, err := h.terminal.AddItem(c.Request.Context(), req.ItemID, quantity)
	if errors.Is(err, catalog.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Item not found",
			"details": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add item",
			"details": err.Error(),
		})
		return
	}

	h.commandResponse(c, res)
}

func (h *Handler) addCustomItem(c *gin.Context) {
	res := h.terminal.AddCustomItem(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{
		"result": res,
		"cart":   h.terminal.Cart(),
	})
}

// SetQuantityRequest is the body of PUT /cart/items/:lineId/quantity. The value is
// raw operator input: a number or a string.
type SetQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// SetPriceRequest is the body of PUT /cart/items/:lineId/price
type SetPriceRequest struct {
	Price json.RawMessage `json:"price"`
}

func (h *Handler) setQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if !bindRawInput(c, &req, func() json.RawMessage { return req.Quantity }) {
		return
	}
	res := h.terminal.SetQuantity(c.Request.Context(), c.Param("lineId"), rawInput(req.Quantity))
	h.commandResponse(c, res)
}

func (h *Handler) setPrice(c *gin.Context) {
	var req SetPriceRequest
	if !bindRawInput(c, &req, func() json.RawMessage { return req.Price }) {
		return
	}
	res := h.terminal.SetPrice(c.Request.Context(), c.Param("lineId"), rawInput(req.Price))
	h.commandResponse(c, res)
}

func (h *Handler) removeItem(c *gin.Context) {
	res := h.terminal.RemoveItem(c.Request.Context(), c.Param("lineId"))
	h.commandResponse(c, res)
}

// commandResponse answers a cart command. Rejected commands are not errors.
func (h *Handler) commandResponse(c *gin.Context, res service.CommandResult) {
	c.JSON(http.StatusOK, gin.H{
		"result": res,
		"cart":   h.terminal.Cart(),
	})
}

func (h *Handler) checkout(c *gin.Context) {
	key := c.GetHeader("Idempotency-Key")

	res, err := h.terminal.Checkout(c.Request.Context(), key)
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Cart is empty",
			"details": err.Error(),
		})
		return
	case errors.Is(err, service.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Checkout in progress",
			"details": err.Error(),
		})
		return
	case err != nil:
		h.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to checkout",
			"details": err.Error(),
		})
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

func (h *Handler) getReceipt(c *gin.Context) {
	r, ok := h.terminal.LastReceipt()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No receipt to display"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) dismissReceipt(c *gin.Context) {
	h.terminal.DismissReceipt()
	c.Status(http.StatusNoContent)
}

func (h *Handler) requestUpsell(c *gin.Context) {
	generation, _, err := h.terminal.RequestUpsell(c.Request.Context())
	if errors.Is(err, service.ErrSuggestionPending) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Suggestion already in progress",
			"details": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to request suggestion",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"generation": generation})
}

func (h *Handler) getUpsell(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal.Suggestion())
}

func (h *Handler) getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.terminal.Dashboard())
}

func (h *Handler) analyzeShift(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"analysis": h.terminal.AnalyzeShift(c.Request.Context())})
}

func (h *Handler) getAuditLog(c *gin.Context) {
	order := strings.ToLower(c.DefaultQuery("order", "desc"))
	if order != "asc" && order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be asc or desc"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.terminal.AuditLog(order == "desc")})
}

func bindRawInput(c *gin.Context, req interface{}, field func() json.RawMessage) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	if len(field()) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing input value"})
		return false
	}
	return true
}

// rawInput turns a JSON scalar into the text an operator would have typed
func rawInput(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
