package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/middleware"
)

// Services bundles the domain services the routes dispatch to.
type Services struct {
	Users   core.UserService
	Lessons core.LessonService
	Reports core.ReportService
	Billing core.BillingService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request id, logging, recovery, CORS) is applied to router by the caller.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	verifier middleware.TokenVerifier,
	services Services,
) {
	authMW := middleware.NewAuthMiddleware(verifier, logger)
	requireToken := authMW.VerifyToken()
	requireAdmin := middleware.RequireAdmin(services.Users, logger)

	userHandler := NewUserHandler(services.Users, logger)
	lessonHandler := NewLessonHandler(services.Lessons, logger)
	reportHandler := NewReportHandler(services.Reports, logger)
	billingHandler := NewBillingHandler(services.Billing, logger)

	// Users
	router.GET("/users", requireToken, requireAdmin, userHandler.ListUsers)
	router.GET("/users/:email", requireToken, userHandler.GetUserByEmail)
	router.POST("/users", userHandler.CreateUser)
	router.PATCH("/users/:id", requireToken, userHandler.UpdatePremium)
	router.GET("/users/:email/roles", requireToken, userHandler.GetUserRole)
	router.PATCH("/users/:id/role", requireToken, requireAdmin, userHandler.UpdateRole)
	router.GET("/top-contributers", requireToken, userHandler.TopContributors)

	// Lessons
	router.GET("/lessons", lessonHandler.LatestLessons)
	router.GET("/lessons/:name", lessonHandler.LessonsByCreator)
	router.GET("/filtered-lessons", lessonHandler.FilteredLessons)
	router.GET("/all-lessons", lessonHandler.AllLessons)
	router.GET("/all-lessons/:id", lessonHandler.GetLesson)
	router.POST("/lessons", lessonHandler.CreateLesson)
	router.DELETE("/lessons/:id", requireToken, lessonHandler.DeleteLesson)
	router.POST("/lessons/:id/likes", lessonHandler.LikeLesson)

	// Reports
	router.POST("/reports/:id", reportHandler.CreateReport)
	router.GET("/reports", requireToken, requireAdmin, reportHandler.ListReports)

	// Payments
	router.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
	router.PATCH("/verify-payment-success", billingHandler.VerifyPaymentSuccess)

	// Health
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "LifeLedger server is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured")
}
