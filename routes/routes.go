package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/controllers"
)

// Handlers bundles the controllers mounted by SetupRoutes.
type Handlers struct {
	Rooms   *controllers.RoomController
	Reviews *controllers.ReviewController
	Users   *controllers.UserController
	Export  *controllers.ExportController
	Health  *controllers.HealthController
	// Upload guards the endpoints that accept images.
	Upload gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", h.Health.Check)

	upload := h.Upload
	if upload == nil {
		upload = func(c *gin.Context) { c.Next() }
	}

	api := r.Group("/" + strings.Trim(prefix, "/"))
	{
		room := api.Group("/room")
		{
			room.GET("", h.Rooms.FindAll)
			room.GET("/export", h.Export.ExportRooms)
			room.GET("/owner/:owner_id", h.Rooms.FindByOwner)
			room.GET("/:id", h.Rooms.FindOne)
			room.POST("", upload, h.Rooms.Create)
			room.PUT("/:id", upload, h.Rooms.Update)
			room.DELETE("/:id", h.Rooms.Delete)

			room.GET("/review/:room_id", h.Reviews.ListByRoom)
			room.POST("/review", upload, h.Reviews.Create)
			room.PUT("/review/:id", upload, h.Reviews.Update)
			room.DELETE("/review/:id", h.Reviews.Delete)
		}

		user := api.Group("/user")
		{
			user.GET("", h.Users.FindAll)
			user.GET("/:id", h.Users.FindOne)
			user.POST("", h.Users.Create)
			user.PUT("/avatar/:id", upload, h.Users.ChangeAvatar)
		}
	}
}
