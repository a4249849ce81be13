package main

import (
	"context"
	"log"

	"parcela/internal/domain/card"
	"parcela/internal/domain/notification"
	"parcela/internal/domain/payment"
	"parcela/internal/domain/purchase"
	"parcela/internal/infrastructure/firebase"
	"parcela/internal/infrastructure/postgres"
	httphandlers "parcela/internal/interfaces/http"
	"parcela/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	CardHandler         *httphandlers.CardHandler
	PurchaseHandler     *httphandlers.PurchaseHandler
	InstallmentHandler  *httphandlers.InstallmentHandler
	ReconcileHandler    *httphandlers.ReconcileHandler
	NotificationHandler *httphandlers.NotificationHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	cardRepo := postgres.NewCardRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	installmentRepo := postgres.NewInstallmentRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	paymentStore := postgres.NewPaymentStore(db)

	// Initialize domain services
	cardService := card.NewService(cardRepo, purchaseRepo, accountRepo)
	purchaseService := purchase.NewService(purchaseRepo, installmentRepo, cardRepo, categoryRepo)
	paymentService := payment.NewService(paymentStore, installmentRepo, purchaseRepo, cardRepo)
	autoPayService := payment.NewAutoPayService(paymentStore, cardRepo)

	// Push notifications are optional; the sweep runs without them.
	var notifier payment.Notifier
	if cfg.Sweep.NotifyEnabled {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, tokenRepo.Deactivate)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			notifier = notification.NewSweepNotifier(tokenRepo, fcmClient)
			log.Println("Sweep notifications enabled")
		}
	}

	tracker := payment.NewRunTracker()
	sweepService := payment.NewSweepService(paymentStore, purchaseRepo, cardRepo, tracker, notifier)

	// Initialize handlers
	cardHandler := httphandlers.NewCardHandler(cardService)
	purchaseHandler := httphandlers.NewPurchaseHandler(purchaseService, autoPayService)
	installmentHandler := httphandlers.NewInstallmentHandler(paymentService, purchaseService)
	reconcileHandler := httphandlers.NewReconcileHandler(sweepService)
	notificationHandler := httphandlers.NewNotificationHandler(tokenRepo)

	return &Dependencies{
		DB:                  db,
		CardHandler:         cardHandler,
		PurchaseHandler:     purchaseHandler,
		InstallmentHandler:  installmentHandler,
		ReconcileHandler:    reconcileHandler,
		NotificationHandler: notificationHandler,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
