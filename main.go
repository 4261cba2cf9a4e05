// File: medibook/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/routes"
	"medibook/services/chat"
	"medibook/services/extraction"
	"medibook/services/ingestion"
	"medibook/services/rag"
	"medibook/services/session"
	"medibook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	ingestDir := flag.String("ingest", "", "ingest PDFs from this directory into the vector index and exit")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()

	embedder := rag.NewHuggingFaceEmbedder(
		config.AppConfig.EmbeddingModel,
		config.AppConfig.HuggingFaceAPIKey,
	)
	pinecone := rag.NewPineconeClient(
		config.AppConfig.PineconeHost,
		config.AppConfig.PineconeAPIKey,
		embedder,
	)

	// Offline batch mode: populate the index, then exit.
	if *ingestDir != "" {
		ingestSvc := ingestion.NewService(embedder, pinecone)
		count, err := ingestSvc.IngestDirectory(context.Background(), *ingestDir)
		if err != nil {
			logger.Sugar().Fatalf("main: ingestion failed: %v", err)
		}
		logger.Sugar().Infof("Ingested %d chunks from %s", count, *ingestDir)
		return
	}

	generator := buildGenerator()
	extractor := extraction.New()

	required := config.RequiredFields()
	for _, f := range required {
		if !extractor.Knows(f) {
			logger.Sugar().Fatalf("main: BOOKING_REQUIRED_FIELDS names unknown field %q", f)
		}
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	var store session.Store
	if config.AppConfig.SessionStore == "redis" {
		store = session.NewRedisStore(utils.GetSessionCacheClient(), sessionTTL)
	} else {
		store = session.NewMemoryStore(sessionTTL)
	}

	sessionMgr := session.NewManager(store, session.Options{
		RequiredFields:     required,
		KeepHistoryOnClear: config.AppConfig.SessionKeepHistoryOnClear,
		FieldValid:         extractor.Valid,
	})

	chatSvc := chat.NewService(pinecone, generator, extractor, sessionMgr, config.AppConfig.RetrievalTopK)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.SessionCookieMiddleware())
	router.LoadHTMLGlob("templates/*.html")

	handlerBundle := &routes.HandlerBundle{
		Chat:    handlers.NewChatHandler(chatSvc),
		Booking: handlers.NewBookingHandler(sessionMgr),
		Session: handlers.NewSessionHandler(sessionMgr),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

func buildGenerator() rag.Generator {
	logger := utils.GetLogger()

	switch config.AppConfig.GeneratorProvider {
	case "gemini":
		g, err := rag.NewGeminiGenerator(config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize gemini generator: %v", err)
		}
		return g
	default:
		return rag.NewGroqGenerator(
			config.AppConfig.GroqBaseURL,
			config.AppConfig.GroqAPIKey,
			config.AppConfig.GroqModel,
			config.AppConfig.GeneratorMaxTokens,
			config.AppConfig.GeneratorTemperature,
		)
	}
}
