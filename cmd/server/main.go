package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/macroplate/backend/config"
	httpDelivery "github.com/macroplate/backend/internal/delivery/http"
	"github.com/macroplate/backend/internal/domain"
	"github.com/macroplate/backend/internal/infrastructure/cache"
	"github.com/macroplate/backend/internal/infrastructure/fdc"
	"github.com/macroplate/backend/internal/infrastructure/sqlite"
	"github.com/macroplate/backend/internal/provider"
	"github.com/macroplate/backend/internal/usecase"
)

func main() {
	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting MacroPlate Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database: %s", cfg.Database.Path)

	// Internal food database
	store, err := sqlite.NewFoodStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open food database: %v", err)
	}
	defer store.Close()

	internalProvider := provider.NewInternal(store, domain.ProviderConfigPatch{
		Priority: &cfg.Aggregator.InternalPriority,
	})

	providers := []domain.FoodProvider{internalProvider}
	enabledProviders := []domain.SourceType{domain.SourceInternal}

	// External FDC provider, only when an API key is configured. Its
	// absence degrades gracefully to internal-only results.
	fdcEnabled := false
	if cfg.FDC.APIKey != "" {
		fdcClient, err := fdc.NewClient(cfg.FDC.APIKey, fdc.ClientOptions{
			BaseURL:           cfg.FDC.BaseURL,
			RequestsPerMinute: cfg.FDC.RequestsPerMinute,
			RequestsPerHour:   cfg.FDC.RequestsPerHour,
			Timeout:           cfg.FDC.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to create FDC client: %v", err)
		}

		if cfg.Server.Environment == "development" {
			fdcClient.SetDebug(true)
			log.Printf("FDC client debug mode enabled")
		}

		fdcProvider := provider.NewFDC(fdcClient, cache.NewMemoryCache(), domain.ProviderConfigPatch{
			Priority: &cfg.Aggregator.FDCPriority,
			CacheTTL: &cfg.FDC.CacheTTL,
		})

		providers = append(providers, fdcProvider)
		enabledProviders = append(enabledProviders, domain.SourceFDCUSDA)
		fdcEnabled = true
		log.Printf("FDC API configured: %s", cfg.FDC.BaseURL)
	} else {
		log.Printf("WARNING: FDC API key not configured - external food search unavailable")
	}

	// Aggregator instance, injected into the HTTP layer
	aggregator := usecase.NewAggregator(usecase.AggregatorConfig{
		EnabledProviders: enabledProviders,
		MergeStrategy:    usecase.MergeStrategy(cfg.Aggregator.MergeStrategy),
		Deduplication: usecase.DeduplicationConfig{
			Enabled:             cfg.Aggregator.DeduplicationEnabled,
			SimilarityThreshold: cfg.Aggregator.SimilarityThreshold,
		},
		DefaultPageSizes: map[domain.SourceType]int{
			domain.SourceInternal: cfg.Aggregator.InternalPageSize,
			domain.SourceFDCUSDA:  cfg.Aggregator.FDCPageSize,
		},
		MaxResults:      cfg.Aggregator.MaxResults,
		ProviderTimeout: cfg.Aggregator.ProviderTimeout,
	}, providers...)

	log.Printf("Aggregator: strategy=%s, dedup=%v (threshold=%.2f), providers=%v",
		cfg.Aggregator.MergeStrategy,
		cfg.Aggregator.DeduplicationEnabled,
		cfg.Aggregator.SimilarityThreshold,
		enabledProviders)

	handler := httpDelivery.NewHandler(aggregator, internalProvider, fdcEnabled)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
