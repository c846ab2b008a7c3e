package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/service"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Handler contains HTTP handlers
type Handler struct {
	purchases *service.PurchaseService
	gallery   *service.GalleryService
	store     *store.Store
}

// NewHandler creates a new HTTP handler
func NewHandler(purchases *service.PurchaseService, gallery *service.GalleryService, store *store.Store) *Handler {
	return &Handler{
		purchases: purchases,
		gallery:   gallery,
		store:     store,
	}
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
		v1.POST("/purchases", h.registerPurchase)
		v1.POST("/purchases/cart", h.registerCartPurchase)
		v1.GET("/purchases/:id", h.getPurchaseStatus)
		v1.GET("/purchases/stats", h.getPurchaseStats)

		v1.GET("/gallery", h.listGallery)
		v1.GET("/gallery/:id", h.getGalleryGame)
		v1.POST("/gallery", h.publishToGallery)
		v1.PUT("/gallery/:id/price", h.updatePrice)
		v1.PUT("/gallery/:id/promotion", h.applyPromotion)
		v1.DELETE("/gallery/:id/promotion", h.removePromotion)
		v1.DELETE("/gallery/:id", h.removeFromGallery)

		v1.POST("/games", h.createGame)

		v1.GET("/players/:id/cart", h.getCart)
		v1.POST("/players/:id/cart/items", h.addCartItem)
		v1.DELETE("/players/:id/cart/items/:galleryID", h.removeCartItem)

		v1.GET("/players/:id/library", h.getLibrary)
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

type registerPurchaseRequest struct {
	PlayerID uuid.UUID `json:"player_id" binding:"required"`
	GameID   uuid.UUID `json:"game_id" binding:"required"`
}

// registerPurchase places a single-game purchase order
func (h *Handler) registerPurchase(c *gin.Context) {
	var req registerPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	receipt, err := h.purchases.RegisterSinglePurchase(c.Request.Context(), req.PlayerID, req.GameID)
	if err != nil {
		status := validationStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, receipt)
}

type cartPurchaseRequest struct {
	PlayerID uuid.UUID `json:"player_id" binding:"required"`
}

// registerCartPurchase checks out the player's whole cart
func (h *Handler) registerCartPurchase(c *gin.Context) {
	var req cartPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.purchases.RegisterCartPurchase(c.Request.Context(), req.PlayerID)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// getPurchaseStatus answers the poll for an order's progress
func (h *Handler) getPurchaseStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	status, err := h.purchases.GetPurchaseStatus(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve purchase status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": status})
}

func (h *Handler) getPurchaseStats(c *gin.Context) {
	var start, end *time.Time
	if s := c.Query("start"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			start = &t
		}
	}
	if e := c.Query("end"); e != "" {
		if t, err := time.Parse(time.RFC3339, e); err == nil {
			end = &t
		}
	}

	stats, err := h.gallery.GetPurchaseStats(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchase stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listGallery(c *gin.Context) {
	gallery, err := h.gallery.ListGallery(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load gallery"})
		return
	}
	c.JSON(http.StatusOK, gallery)
}

func (h *Handler) getGalleryGame(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	view, err := h.gallery.GetGalleryGame(c.Request.Context(), id)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

type createGameRequest struct {
	EAN         string          `json:"ean" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	SubTitle    string          `json:"sub_title"`
	Genre       string          `json:"genre" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (h *Handler) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	game := &models.Game{
		EAN:         req.EAN,
		Title:       req.Title,
		SubTitle:    req.SubTitle,
		Genre:       req.Genre,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.gallery.CreateGame(c.Request.Context(), game); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, game)
}

type publishToGalleryRequest struct {
	GameID uuid.UUID       `json:"game_id" binding:"required"`
	Price  decimal.Decimal `json:"price"`
}

func (h *Handler) publishToGallery(c *gin.Context) {
	var req publishToGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	gallery, err := h.gallery.PublishToGallery(c.Request.Context(), req.GameID, req.Price)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gallery)
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) updatePrice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.gallery.UpdatePrice(c.Request.Context(), id, req.Price); err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type applyPromotionRequest struct {
	Type    string          `json:"type" binding:"required"`
	Value   decimal.Decimal `json:"value"`
	StartOf time.Time       `json:"start_of" binding:"required"`
	EndOf   time.Time       `json:"end_of" binding:"required"`
}

func (h *Handler) applyPromotion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	var req applyPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err = h.gallery.ApplyPromotion(c.Request.Context(), id, req.Type, req.Value, req.StartOf, req.EndOf)
	if err != nil {
		c.JSON(validationStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removePromotion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	if err := h.gallery.RemovePromotion(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove promotion"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFromGallery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	if err := h.gallery.RemoveFromGallery(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove gallery game"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getCart(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}

	cart, err := h.store.GetCartByPlayerID(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	if cart == nil {
		cart = &models.Cart{PlayerID: playerID, Items: []models.CartItem{}}
	}
	c.JSON(http.StatusOK, cart)
}

type addCartItemRequest struct {
	GalleryID uuid.UUID `json:"gallery_id" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	available, err := h.store.IsAvailableForPurchase(c.Request.Context(), req.GalleryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check availability"})
		return
	}
	if !available {
		c.JSON(http.StatusConflict, gin.H{"error": service.ErrNotAvailableForPurchase.Error()})
		return
	}

	if err := h.store.AddCartItem(c.Request.Context(), playerID, req.GalleryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add cart item"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}
	galleryID, err := uuid.Parse(c.Param("galleryID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gallery ID"})
		return
	}

	if err := h.store.RemoveCartItem(c.Request.Context(), playerID, galleryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getLibrary(c *gin.Context) {
	playerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}

	library, err := h.purchases.GetPlayerLibrary(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load library"})
		return
	}
	c.JSON(http.StatusOK, library)
}

// validationStatus maps service errors to HTTP statuses. Validation
// failures surface to the caller with their reason; anything else is a 500.
func validationStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrGameNotInCatalog),
		errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyOwned),
		errors.Is(err, service.ErrNotAvailableForPurchase),
		errors.Is(err, service.ErrDuplicateEAN):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidPromotionWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
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
