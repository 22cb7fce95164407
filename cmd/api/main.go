package main

import (
	"context"
	"log"
	"os"

	_ "bakery-backend/api/swagger" // swagger docs
	"bakery-backend/internal/database"
	"bakery-backend/internal/handler"
	"bakery-backend/internal/middleware"
	"bakery-backend/internal/repository"
	"bakery-backend/internal/service"
	"bakery-backend/internal/storage"
	"bakery-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Bakery Management API
// @version         1.0
// @description     Back office and storefront API for a bakery: supplier ledger, catalog, counter orders and storefront orders.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Disk blob store for voucher scans and product photos
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	blobs, err := storage.NewDiskStore(uploadDir)
	if err != nil {
		log.Fatalf("Blob store init failed: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	commandeRepo := repository.NewCommandeRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, blobs)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, txManager)
	cartService := service.NewCartService(userRepo, productRepo, txManager)
	commandeService := service.NewCommandeService(commandeRepo, txManager, wsHub)
	employeeService := service.NewEmployeeService(employeeRepo)
	supplierService := service.NewSupplierService(supplierRepo, blobs, txManager)

	// Seed the admin account on first boot
	if err := userService.SeedAdmin(context.Background(),
		os.Getenv("ADMIN_NAME"),
		os.Getenv("ADMIN_EMAIL"),
		os.Getenv("ADMIN_PASSWORD"),
	); err != nil {
		log.Printf("WARNING: admin seed failed: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	cartHandler := handler.NewCartHandler(cartService)
	commandeHandler := handler.NewCommandeHandler(commandeService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	supplierHandler := handler.NewSupplierHandler(supplierService)

	// Set up Gin Router
	router := gin.Default()
	router.MaxMultipartMemory = storage.MaxUploadSize

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Stored voucher scans and product photos
	router.Static("/uploads", blobs.Root())

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	cartHandler.RegisterRoutes(router.Group(""))
	commandeHandler.RegisterRoutes(router.Group(""))
	employeeHandler.RegisterRoutes(router.Group(""))
	supplierHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
