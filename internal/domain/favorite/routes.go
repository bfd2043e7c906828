package favorite

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the favorites API on an authenticated group.
// mutating runs before handlers that change data (rate limiting).
func RegisterRoutes(r *gin.RouterGroup, h *Handler, mutating ...gin.HandlerFunc) {
	favorites := r.Group("/favorites")
	{
		favorites.GET("", h.List)
		favorites.GET("/:id", h.Get)
		favorites.POST("", with(mutating, h.Create)...)
		favorites.PATCH("/reorder", with(mutating, h.Reorder)...)
		favorites.PATCH("/:id", with(mutating, h.Update)...)
		favorites.DELETE("/:id", with(mutating, h.Delete)...)
		favorites.PUT("/:id", h.Replace)
	}
}

// RegisterStreamRoutes mounts the change-notification socket. It
// authenticates with a query token, so it sits outside the JWT group.
func RegisterStreamRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/favorites/ws", h.Subscribe)
}

func with(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
