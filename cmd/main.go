package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/seracstudio/payrecon-gobackend/internal/config"
	"github.com/seracstudio/payrecon-gobackend/internal/db"
	"github.com/seracstudio/payrecon-gobackend/internal/handlers"
	"github.com/seracstudio/payrecon-gobackend/internal/logger"
	"github.com/seracstudio/payrecon-gobackend/internal/metrics"
	"github.com/seracstudio/payrecon-gobackend/internal/middleware"
	"github.com/seracstudio/payrecon-gobackend/internal/services"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load(".env")

	cfg := config.Load()
	log := logger.New(cfg.Env)
	metrics.Init()

	if err := db.Connect(cfg.MongoURI); err != nil {
		log.Error("failed to connect to MongoDB", "err", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Disconnect(ctx); err != nil {
			log.Error("error disconnecting from MongoDB", "err", err)
		}
	}()
	log.Info("connected to MongoDB")

	database := db.Client.Database(cfg.MongoDatabase)

	store := services.NewMongoStore(database)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(ctx, cfg.Tenants); err != nil {
			log.Error("failed to create indexes", "err", err)
			os.Exit(1)
		}
	}

	verifier := services.NewFlutterwaveService(cfg.FlwSecretKey, cfg.FlwBaseURL, cfg.UpstreamTimeout)
	auth := services.NewSignatureAuthenticator(services.SignatureMode(cfg.SignatureMode), cfg.WebhookSecret)
	reconciler := services.NewReconcilerService(store, store, verifier, log)

	paymentHandler := handlers.NewPaymentHandler(auth, reconciler, cfg, log)
	orderHandler := handlers.NewOrderHandler(store, cfg, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Recover)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/payment/webhook", paymentHandler.Webhook).Methods("POST")
	router.HandleFunc("/api/payment/verify", paymentHandler.Verify).Methods("POST")
	router.HandleFunc("/api/order", orderHandler.GetOrder).Methods("GET", "POST")
	router.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	log.Info("server running", "port", cfg.HTTPPort, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
