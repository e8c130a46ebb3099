package main

import (
	"context"
	"fmt"
	"log"

	"invoiceai-backend/cmd/api"
	accountdomain "invoiceai-backend/internal/account/domain"
	accountrepo "invoiceai-backend/internal/account/repository"
	invoicedomain "invoiceai-backend/internal/invoice/domain"
	invoicerepo "invoiceai-backend/internal/invoice/repository"
	"invoiceai-backend/internal/notification"
	syncdomain "invoiceai-backend/internal/sync/domain"
	syncrepo "invoiceai-backend/internal/sync/repository"
	"invoiceai-backend/internal/sync/scheduler"
	syncusecase "invoiceai-backend/internal/sync/usecase"
	"invoiceai-backend/pkg/config"
	"invoiceai-backend/pkg/database"
	"invoiceai-backend/pkg/extract"
	"invoiceai-backend/pkg/fcm"
	"invoiceai-backend/pkg/gmail"
	"invoiceai-backend/pkg/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&accountdomain.MailboxAccount{},
		&syncdomain.SyncCursor{},
		&syncdomain.RepliedThread{},
		&invoicedomain.Invoice{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	accountRepository := accountrepo.NewAccountRepository(db)
	cursorRepository := syncrepo.NewSyncCursorRepository(db)
	repliedRepository := syncrepo.NewRepliedThreadRepository(db)
	invoiceRepository := invoicerepo.NewInvoiceRepository(db)

	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	ctx := context.Background()

	store, err := storage.NewClient(ctx, cfg.StorageBucket, cfg.GoogleCredentials)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	extractor, err := extract.NewInvoiceExtractor(extract.Config{
		Provider:       extract.ProviderGemini,
		GeminiAPIKey:   cfg.GeminiApiKey,
		GeminiModel:    cfg.GeminiModel,
		GetGeminiModel: api.GetRuntimeGeminiModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize invoice extractor: %v", err)
	}

	// FCM is optional; a nil client disables operator push
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials, cfg.FCMTopic)
		if err != nil {
			log.Printf("Warning: Failed to initialize FCM client: %v", err)
		} else {
			log.Println("FCM client initialized successfully")
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS not set, operator push disabled")
	}

	watchTopic := fmt.Sprintf("projects/%s/topics/%s", cfg.GoogleProjectID, cfg.GooglePubSubTopic)

	syncUc := syncusecase.NewSyncUsecase(
		accountRepository,
		cursorRepository,
		repliedRepository,
		invoiceRepository,
		gmailService,
		store,
		extractor,
		fcmClient,
		watchTopic,
		cfg.ExtractTimeout,
	)

	debouncer := syncusecase.NewDebouncer(cfg.DebounceWindow, syncUc.ProcessNotification)

	// Pull-mode subscriber; push deployments rely on the webhook instead
	if cfg.GoogleProjectID != "" {
		notificationService, err := notification.NewService(cfg.GoogleProjectID, cfg.GooglePubSubTopic, debouncer, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("Warning: Failed to initialize notification service: %v", err)
		} else {
			go notificationService.Start(ctx)
		}
	}

	watchScheduler := scheduler.NewWatchRenewalScheduler(cursorRepository, syncUc, cfg.WatchRenewInterval)
	watchScheduler.Start()
	defer watchScheduler.Stop()

	handler := api.NewHandler(debouncer, syncUc, accountRepository, invoiceRepository, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
