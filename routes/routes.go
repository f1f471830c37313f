package routes

import (
	"github.com/gin-gonic/gin"

	"lending-admin-api/controllers"
	"lending-admin-api/middleware"
	"lending-admin-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Lending Admin API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reference data
			protected.GET("/branches", controllers.GetBranches)
			protected.GET("/schemes", controllers.GetSchemes)

			// Loan applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.POST("", controllers.SubmitApplication)

				// Only admin can decide
				applications.POST("/:id/approve", middleware.RequireRole(models.RoleAdmin), controllers.ApproveApplication)
				applications.POST("/:id/reject", middleware.RequireRole(models.RoleAdmin), controllers.RejectApplication)
			}

			// Collections. Recording is restricted to the roles that
			// actually handle money; reading the history is not.
			loans := protected.Group("/loans")
			{
				loans.POST("/:id/payments", middleware.RequireRole(models.RoleAdmin, models.RoleCollectionAgent), controllers.RecordPayment)
				loans.GET("/:id/payments", controllers.GetLoanPayments)
			}
			protected.POST("/payments/:record_id/reverse", middleware.RequireRole(models.RoleAdmin), controllers.ReversePayment)

			// Daily collection report
			reports := protected.Group("/reports")
			{
				reports.GET("/daily-collections", controllers.GetDailyCollectionReport)
			}

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// Admin management
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/branches", controllers.CreateBranch)
				admin.PUT("/branches/:id", controllers.UpdateBranch)
				admin.DELETE("/branches/:id", controllers.DeleteBranch)

				admin.GET("/users", controllers.GetUsers)
				admin.POST("/users", controllers.CreateUser)
				admin.PUT("/users/:id", controllers.UpdateUser)
				admin.DELETE("/users/:id", controllers.DeleteUser)

				admin.POST("/schemes", controllers.CreateScheme)
				admin.PUT("/schemes/:id/active", controllers.SetSchemeActive)

				admin.POST("/reports/daily-summary/run", controllers.RunDailySummaryNow)
			}
		}

	}

	// 404 catch-all for unmatched routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
