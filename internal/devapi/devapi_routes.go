package devapi

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api/v1")
	{
		api.GET("/products", h.GetProduct)

		authed := api.Group("", authMiddleware())
		{
			authed.POST("/add_order", h.AddOrder)
			authed.GET("/get_orders", h.GetOrders)
			authed.PUT("/cancel_order", h.CancelOrder)

			authed.POST("/add_to_wishlist", h.AddToWishlist)
			authed.POST("/remove_from_wishlist", h.RemoveFromWishlist)
			authed.GET("/product_in_wish_list", h.InWishlist)
			authed.GET("/get_wish_list", h.GetWishlist)

			authed.POST("/products/add_review", h.AddReview)
			authed.GET("/user_order_validation", h.UserOrderValidation)

			admin := authed.Group("/admin", adminMiddleware())
			{
				admin.PUT("/update_order", h.UpdateOrder)
			}
		}
	}
}
