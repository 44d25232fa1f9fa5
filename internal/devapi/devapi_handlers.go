package devapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/response"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/review"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/session"
)

// Publisher receives every order mutation so the live feed can fan it out.
type Publisher interface {
	OrderUpdated(ctx context.Context, o order.Order)
}

type Handler struct {
	state     *State
	publisher Publisher
	logger    *zap.Logger
}

func NewHandler(state *State, publisher Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		state:     state,
		publisher: publisher,
		logger:    logger.Named("devapi"),
	}
}

// authMiddleware extracts the user from the bearer token without verifying
// the signature. This is a development stub; a real backend verifies.
func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Missing bearer token", nil)
			c.Abort()
			return
		}

		var claims session.Claims
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Malformed bearer token", nil)
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "Admin only", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
}

// GetProduct serves GET /products?productId=...
func (h *Handler) GetProduct(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "productId is required", nil)
		return
	}

	p, err := h.state.Product(productID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OK", p)
}

// AddOrder serves POST /add_order.
func (h *Handler) AddOrder(c *gin.Context) {
	var o order.Order
	if err := c.ShouldBindJSON(&o); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid order payload", err.Error())
		return
	}
	if o.ID == "" || len(o.Items) == 0 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Order needs an id and items", nil)
		return
	}

	o.UserID = c.GetString("user_id")

	placed, err := h.state.AddOrder(o)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("user_id", placed.UserID),
	)
	response.Success(c, http.StatusOK, "Order placed", gin.H{"_id": placed.ID})
}

// GetOrders serves GET /get_orders, both by orderId and paginated.
func (h *Handler) GetOrders(c *gin.Context) {
	if orderID := c.Query("orderId"); orderID != "" {
		o, err := h.state.Order(orderID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		response.Success(c, http.StatusOK, "OK", o)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	orders, hasNext := h.state.UserOrders(c.GetString("user_id"), page)
	response.SuccessWithPagination(c, http.StatusOK, "OK",
		gin.H{"orders": orders},
		response.Pagination{
			Page:            page,
			PageSize:        ordersPageSize,
			HasNextPage:     hasNext,
			HasPreviousPage: page > 1,
		},
	)
}

// CancelOrder serves PUT /cancel_order.
func (h *Handler) CancelOrder(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "orderId is required", nil)
		return
	}

	o, err := h.state.SetStatus(req.OrderID, order.StatusCancelled)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publisher.OrderUpdated(c, o)
	response.Success(c, http.StatusOK, "Order cancelled", o)
}

// UpdateOrder serves PUT /admin/update_order.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req struct {
		OrderID string `json:"orderId" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "orderId and status are required", nil)
		return
	}

	next := order.Status(req.Status)
	if !next.Valid() {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Unknown status", nil)
		return
	}

	o, err := h.state.SetStatus(req.OrderID, next)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publisher.OrderUpdated(c, o)
	response.Success(c, http.StatusOK, "Order updated", o)
}

// AddToWishlist serves POST /add_to_wishlist.
func (h *Handler) AddToWishlist(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "productId is required", nil)
		return
	}

	if _, err := h.state.Product(req.ProductID); err != nil {
		h.writeError(c, err)
		return
	}

	h.state.AddToWishlist(c.GetString("user_id"), req.ProductID)
	response.Success(c, http.StatusOK, "Added to wishlist", gin.H{"productId": req.ProductID})
}

// RemoveFromWishlist serves POST /remove_from_wishlist.
func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "productId is required", nil)
		return
	}

	h.state.RemoveFromWishlist(c.GetString("user_id"), req.ProductID)
	response.Success(c, http.StatusOK, "Removed from wishlist", gin.H{"productId": req.ProductID})
}

// InWishlist serves GET /product_in_wish_list.
func (h *Handler) InWishlist(c *gin.Context) {
	productID := c.Query("productId")
	in := h.state.InWishlist(c.GetString("user_id"), productID)
	response.Success(c, http.StatusOK, "OK", gin.H{"inWishlist": in})
}

// GetWishlist serves GET /get_wish_list.
func (h *Handler) GetWishlist(c *gin.Context) {
	ids := h.state.Wishlist(c.GetString("user_id"))
	response.Success(c, http.StatusOK, "OK", gin.H{"products": ids})
}

// AddReview serves POST /products/add_review.
func (h *Handler) AddReview(c *gin.Context) {
	var r review.Review
	if err := c.ShouldBindJSON(&r); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "Invalid review payload", nil)
		return
	}

	r.UserID = c.GetString("user_id")
	if !h.state.HasPurchased(r.UserID, r.ProductID) {
		response.Error(c, http.StatusForbidden, apperror.CodeForbidden, "Only purchasers can review", nil)
		return
	}

	h.state.AddReview(r)
	response.Success(c, http.StatusOK, "Review added", nil)
}

// UserOrderValidation serves GET /user_order_validation.
func (h *Handler) UserOrderValidation(c *gin.Context) {
	purchased := h.state.HasPurchased(c.GetString("user_id"), c.Query("productId"))
	response.Success(c, http.StatusOK, "OK", gin.H{"purchased": purchased})
}
