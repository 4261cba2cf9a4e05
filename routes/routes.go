package routes

import (
	"net/http"
	"time"

	"medibook/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle collects every handler the router needs.
type HandlerBundle struct {
	Chat    *handlers.ChatHandler
	Booking *handlers.BookingHandler
	Session *handlers.SessionHandler
}

// RegisterRoutes wires the HTTP surface.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	r.GET("/", hb.Chat.Index)
	r.POST("/get", hb.Chat.HandleMessage)

	r.GET("/book", hb.Booking.ShowForm)
	r.POST("/book/confirm", hb.Booking.Confirm)

	r.GET("/session", hb.Session.Snapshot)
	r.POST("/logout", hb.Session.Logout)
	// Kept for compatibility with the original chat shell.
	r.GET("/logout", hb.Session.Logout)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Medibook"})
	})
}
