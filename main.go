package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"quest-bounty-system/handlers"
	"quest-bounty-system/middleware"
	"quest-bounty-system/models"
	"quest-bounty-system/services"
	"quest-bounty-system/utils"
	"quest-bounty-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // 50MB, proof artifacts are small
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Quest{},
		&models.Submission{},
		&models.EscrowAccount{},
		&models.UserStats{},
		&models.ServiceConfig{},
		&models.QuestEvent{},
		&models.CustodyMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- CONFIGURE Ledger Service details ---
	ledgerServiceURL := os.Getenv("LEDGER_SERVICE_URL")
	if ledgerServiceURL == "" {
		log.Fatal("LEDGER_SERVICE_URL environment variable not set")
	}
	questServiceToken := os.Getenv("QUEST_SERVICE_TOKEN")
	if questServiceToken == "" {
		log.Fatal("QUEST_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	ledger := services.NewLedgerServiceClient(ledgerServiceURL, questServiceToken)

	configService := services.NewConfigService(db)
	questService := services.NewQuestService(db)
	escrowService := services.NewEscrowService(db, ledger)
	reputationService := services.NewReputationService(db, configService)
	submissionService := services.NewSubmissionService(db, questService, escrowService, reputationService)

	// --- Custody balance mirror (observability only) ---
	custodySync := workers.NewCustodySyncClient(db, ledger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollCustodyBalances(ctx, custodySync, 30*time.Second)

	escrowService.StartReconciler()

	// ✅ Setup routes — enforced Gateway auth, principal from user context
	handlers.SetupQuestRoutes(app, questService)
	handlers.SetupEscrowRoutes(app, escrowService)
	handlers.SetupSubmissionRoutes(app, submissionService)
	handlers.SetupReputationRoutes(app, reputationService)
	handlers.SetupAdminRoutes(app, configService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Custody balance polling running (every 30s)")
	log.Println("✅ Escrow reconciler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
