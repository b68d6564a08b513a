package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"nauassist/internal/config"
	"nauassist/internal/database"
	"nauassist/internal/handler"
	"nauassist/internal/logging"
	"nauassist/internal/middleware"
	"nauassist/internal/portal"
	"nauassist/internal/repository"
	"nauassist/internal/schedule"
	"nauassist/internal/service"
	"nauassist/internal/structure"
)

// main is the single entry-point for the assistant API.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalw("mongodb connect failed", "error", err)
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.DBName)
	logger.Infow("mongodb connected", "db", cfg.DBName)

	tables, err := structure.Load(cfg.StructurePath)
	if err != nil {
		logger.Fatalw("load routing tables", "error", err)
	}

	// AI backends: Vertex in production, stubs when no GCP project is set.
	var (
		embedder  service.Embedder
		generator service.Generator
		oracle    service.RelevanceOracle
	)
	aiMode := "vertex"
	if cfg.ProjectID != "" {
		vertexEmbedder, err := service.NewVertexEmbedder(ctx, cfg.ProjectID, cfg.Location)
		if err != nil {
			logger.Fatalw("init vertex embedder", "error", err)
		}
		defer vertexEmbedder.Close()

		llm, err := service.NewVertexLLM(ctx, cfg.ProjectID, cfg.Location)
		if err != nil {
			logger.Fatalw("init vertex llm", "error", err)
		}
		defer llm.Close()

		embedder, generator, oracle = vertexEmbedder, llm, llm
	} else {
		logger.Warnw("GCP_PROJECT_ID not set, using stub AI backends")
		aiMode = "stub"
		stub := service.NewStubLLM()
		embedder, generator, oracle = service.NewStubEmbedder(), stub, stub
	}

	portalClient := portal.NewClient(cfg.PortalBaseURL)
	engine := schedule.NewEngine(
		portalClient,
		repository.NewTimetableRepository(db),
		cfg.ScheduleTTL,
		cfg.SemesterStart,
		logger,
	)

	gateway := service.NewVectorGateway(
		repository.NewNewsRepository(db),
		embedder,
		cfg.SearchTopK,
		cfg.SearchMinScore,
		cfg.OracleTimeout,
		logger,
	)
	validator := service.NewValidator(oracle, cfg.OracleTimeout, logger)
	orchestrator := service.NewOrchestrator(gateway, validator, logger)
	classifier := service.NewClassifier(tables, logger)

	assistant := service.NewAssistant(
		classifier,
		orchestrator,
		engine,
		generator,
		cfg.SemesterStart,
		cfg.MaxContextTokens,
		logger,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(middleware.RequestLogging(logger))

	handler.RegisterRoutes(app, assistant, engine, portalClient, client, aiMode)

	logger.Infow("server starting", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
