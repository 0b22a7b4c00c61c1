package main

import (
	"log"

	"github.com/gabrieudev/marcahora/internal/config"
	"github.com/gabrieudev/marcahora/internal/constants"
	"github.com/gabrieudev/marcahora/internal/database"
	"github.com/gabrieudev/marcahora/internal/handlers"
	"github.com/gabrieudev/marcahora/internal/middleware"
	"github.com/gabrieudev/marcahora/internal/repository"
	"github.com/gabrieudev/marcahora/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, memberRepo)
	memberService := services.NewMemberService(memberRepo, orgRepo, userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	memberHandler := handlers.NewMemberHandler(memberService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "MarcaHora API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.GET("/search", orgHandler.SearchOrganizations)
			orgs.GET("/my", orgHandler.GetMyOrganizations)
			orgs.GET("/:organizationId", orgHandler.GetOrganization)
			orgs.PATCH("/:organizationId", orgHandler.UpdateOrganization)
			orgs.DELETE("/:organizationId", orgHandler.DeleteOrganization)

			// Membership routes
			members := orgs.Group("/:organizationId/members")
			{
				members.POST("", memberHandler.AddMember)
				members.GET("", memberHandler.ListMembers)
				members.GET("/my", memberHandler.GetMyMemberships)
				members.POST("/transfer-ownership", memberHandler.TransferOwnership)
				members.DELETE("/leave", memberHandler.LeaveOrganization)
				members.GET("/:memberId", memberHandler.GetMember)
				members.PATCH("/:memberId", memberHandler.UpdateMember)
				members.DELETE("/:memberId", memberHandler.RemoveMember)
			}
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
