package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/repository"
	"fulfillment-service/internal/usecase"
	"fulfillment-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers.
type Handler struct {
	addItem        *usecase.AddItemToCart
	createOrder    *usecase.CreateOrderFromCart
	processPayment *usecase.ProcessPayment
	cancelOrder    *usecase.CancelOrder
	carts          repository.CartRepository
	orders         repository.OrderRepository
	payments       repository.PaymentRepository
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	addItem *usecase.AddItemToCart,
	createOrder *usecase.CreateOrderFromCart,
	processPayment *usecase.ProcessPayment,
	cancelOrder *usecase.CancelOrder,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
) *Handler {
	return &Handler{
		addItem:        addItem,
		createOrder:    createOrder,
		processPayment: processPayment,
		cancelOrder:    cancelOrder,
		carts:          carts,
		orders:         orders,
		payments:       payments,
	}
}

// SetupRoutes sets up HTTP routes.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/carts/:customerId/items", h.addCartItem)
		v1.GET("/carts/:customerId", h.getCart)
		v1.POST("/carts/:customerId/checkout", h.checkout)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:id/cancel", h.postCancelOrder)
		v1.GET("/orders/:id/payment", h.getPayment)
		v1.POST("/payments", h.postPayment)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// addItemRequest is the body of POST /carts/:customerId/items.
type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	cart, err := h.addItem.Execute(c.Request.Context(), c.Param("customerId"), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"total": cart.CalculateTotal(),
	})
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.FindByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"total": cart.CalculateTotal(),
	})
}

func (h *Handler) checkout(c *gin.Context) {
	order, err := h.createOrder.Execute(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.orders.FindByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.orders.FindItems(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	order.Items = items

	c.JSON(http.StatusOK, order)
}

func (h *Handler) postCancelOrder(c *gin.Context) {
	if err := h.cancelOrder.Execute(c.Request.Context(), c.Param("id"), "requested via API"); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// paymentRequest is the body of POST /payments.
type paymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Method  string `json:"method" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
}

func (h *Handler) postPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	payment, err := h.processPayment.Execute(c.Request.Context(),
		req.OrderID, domain.PaymentMethod(req.Method), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) getPayment(c *gin.Context) {
	payment, err := h.payments.FindByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// respondError maps domain failure kinds to HTTP statuses. Anything
// unmatched is a storage/transport failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrCheckoutInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPaymentRejected):
		status = http.StatusPaymentRequired
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics.
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
