package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/campushub/chat-service/internal/handlers"
	"github.com/campushub/chat-service/internal/middleware"
	jwtauth "github.com/campushub/chat-service/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *jwtauth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	roomH *handlers.RoomHandler,
	messageH *handlers.HTTPMessageHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	// API endpoints
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/me", userH.GetMe)
		api.PATCH("/me", userH.UpdateMe)
		api.GET("/users", userH.ListUsers)
		api.GET("/users/search", userH.SearchUsers)
		api.GET("/users/:id", userH.GetUser)

		api.GET("/rooms", roomH.GetMyRooms)
		api.GET("/rooms/direct/:userId", roomH.GetOrCreateDirectRoom)
		api.POST("/rooms/group", roomH.CreateGroupRoom)
		api.GET("/rooms/:id", roomH.GetRoom)
		api.GET("/rooms/:id/messages", messageH.GetRoomMessages)
		api.POST("/rooms/:id/messages", messageH.SendMessage)
		api.POST("/messages/:id/read", messageH.MarkMessageRead)
	}

	// WebSocket endpoint
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)
}
