package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/dto"
	apierrors "github.com/yukikurage/task-user-api/internal/errors"
	"github.com/yukikurage/task-user-api/internal/middleware"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(log *logrus.Logger, store Pinger, tasks *TaskHandler, users *UserHandler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		gin.Recovery(),
		middleware.CORS(),
	)

	r.GET("/health", Health(store))

	api := r.Group("/api")
	{
		taskRoutes := api.Group("/tasks")
		{
			taskRoutes.GET("", tasks.ListTasks)
			taskRoutes.POST("", tasks.CreateTask)

			byID := taskRoutes.Group("/:id", middleware.RequireObjectID())
			byID.GET("", tasks.GetTask)
			byID.PUT("", tasks.UpdateTask)
			byID.DELETE("", tasks.DeleteTask)
		}

		userRoutes := api.Group("/users")
		{
			userRoutes.GET("", users.ListUsers)
			userRoutes.POST("", users.CreateUser)

			byID := userRoutes.Group("/:id", middleware.RequireObjectID())
			byID.GET("", users.GetUser)
			byID.PUT("", users.UpdateUser)
			byID.DELETE("", users.DeleteUser)
		}
	}

	return r
}

// Health reports ok when the store answers a ping
func Health(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			apierrors.ServiceUnavailable(c, "Store unreachable")
			return
		}
		c.JSON(http.StatusOK, dto.NewResponse("OK", gin.H{"status": "ok"}))
	}
}
