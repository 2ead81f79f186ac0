package routes

import (
	"github.com/gin-gonic/gin"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Gilad-Weinberger/netta-nails/config"
	"github.com/Gilad-Weinberger/netta-nails/handlers"
	"github.com/Gilad-Weinberger/netta-nails/middleware"
	"github.com/Gilad-Weinberger/netta-nails/models"
	"github.com/Gilad-Weinberger/netta-nails/services"
	"github.com/Gilad-Weinberger/netta-nails/store"
)

func SetupRoutes(router *gin.Engine, supabaseClient *supa.Client, cfg *config.Config, notifier services.Notifier) {
	st := store.New(supabaseClient, cfg.Location(), cfg.Cutoff())

	authHandler := handlers.NewAuthHandler(st, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(st, notifier, cfg)
	adminHandler := handlers.NewAdminHandler(st, cfg)
	messageHandler := handlers.NewMessageHandler(notifier, cfg)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"message": "Server is running",
		})
	})

	limiter := middleware.NewRateLimiter(5, 10)

	// Notification endpoint consumed by the front end
	router.POST("/send-message", middleware.AuthMiddleware(cfg), messageHandler.SendMessage)

	v1 := router.Group("/api/v1")
	{
		// Auth routes (public, rate limited)
		auth := v1.Group("/auth")
		auth.Use(limiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/auth/me", authHandler.GetMe)
			protected.POST("/auth/logout", authHandler.Logout)

			appointments := protected.Group("/appointments")
			{
				appointments.GET("", appointmentHandler.GetAvailableAppointments)
				appointments.GET("/me", appointmentHandler.GetMyAppointments)
				appointments.POST("/:id/book", appointmentHandler.BookAppointment)
				appointments.POST("/:id/cancel", appointmentHandler.CancelAppointment)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RoleMiddleware(models.RoleAdmin))
			{
				admin.GET("/appointments", adminHandler.GetAllAppointments)
				admin.POST("/appointments", adminHandler.CreateAppointment)
				admin.DELETE("/appointments/:id", adminHandler.DeleteAppointment)
			}
		}
	}
}
