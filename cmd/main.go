package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodflow/internal/api"
	"foodflow/internal/candidates"
	"foodflow/internal/config"
	"foodflow/internal/database"
	"foodflow/internal/decision"
	"foodflow/internal/dispatch"
	"foodflow/internal/feedback"
	"foodflow/internal/inventory"
	"foodflow/internal/llm"
	"foodflow/internal/monitoring"
	"foodflow/internal/pipeline"
	"foodflow/internal/sampler"
	"foodflow/internal/usage"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Metrics server port")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	seed        = flag.Int64("seed", 0, "Randomness seed (0 = time-based)")
	once        = flag.Bool("once", false, "Run one decision loop and exit instead of serving")
	interactive = flag.Bool("interactive", false, "Pause for confirmation between phases (with -once)")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		// Deployment concern resolved at the edge; business logic only
		// ever sees the config struct.
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	model, embedder, err := llm.New(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	db, err := database.Open(cfg.Paths.RecipeCatalog)
	if err != nil {
		log.Fatalf("Failed to open recipe catalog: %v", err)
	}
	defer db.Close()

	ledger := usage.NewLedger(cfg.Cost)
	metrics := monitoring.NewCollector()

	chat := candidates.NewChat(model, ledger, cfg.LLM.Temperature)
	rng := rand.New(rand.NewSource(runSeed()))

	// Sub-seeds derived from the run seed: the collaborators are invoked
	// from parallel goroutines and each needs its own rand.
	aggregator := candidates.NewAggregator(
		candidates.NewCatalogRetriever(db, embedder, ledger, 3),
		candidates.NewLLMRestaurantMatcher(chat, cfg.Paths.RestaurantsCSV, rng.Int63()),
		candidates.NewSoupKitchenFinder(cfg.Paths.SoupKitchenCSV, rng.Int63()),
		cfg.CollaboratorTimeout(),
	)

	store := inventory.NewStore(cfg.Paths.DataDir)

	var harvester *feedback.Harvester
	if cfg.Feedback.Enabled {
		harvester = feedback.NewHarvester(store, chat, cfg.Paths.ResultsDir, cfg.Feedback.EveryN)
	}

	messagesDir := filepath.Join(cfg.Paths.ResultsDir, "messages")
	pipe := pipeline.New(
		store,
		sampler.New(cfg.Sampler),
		aggregator,
		decision.NewEngine(cfg.Decision),
		dispatch.NewDispatcher(chat, messagesDir, cfg.Restaurant, cfg.City),
		harvester,
		ledger,
		metrics,
		confirmer(),
	)

	if *once {
		runOnce(ctx, pipe, ledger, rng)
		return
	}

	serve(ctx, cancel, pipe, ledger, metrics)
}

// runSeed resolves the -seed flag; zero means non-reproducible
func runSeed() int64 {
	if *seed != 0 {
		return *seed
	}
	return time.Now().UnixNano()
}

func confirmer() pipeline.Confirmer {
	if *interactive {
		return stdinConfirmer{}
	}
	return pipeline.NopConfirmer{}
}

// stdinConfirmer pauses between phases; kept out of the core so headless
// deployments never block
type stdinConfirmer struct{}

func (stdinConfirmer) ConfirmBefore(step pipeline.Step) {
	fmt.Printf("Press Enter to continue with %s...", step)
	bufio.NewReader(os.Stdin).ReadString('\n')
}

func runOnce(ctx context.Context, pipe *pipeline.Pipeline, ledger *usage.Ledger, rng *rand.Rand) {
	result, err := pipe.Run(ctx, rng)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	log.Printf("Run %s complete: %d expiring ingredients", result.ID, len(result.Batch))
	if result.Plan.ChosenDish != "" {
		log.Printf("Chosen dish: %s", result.Plan.ChosenDish)
	}
	for _, d := range result.Plan.Decisions {
		log.Printf("  %-8s %s (%s)", d.Action, d.Ingredient, d.Rationale)
	}

	report := ledger.Report()
	log.Printf("Token usage: prompt=%d completion=%d embedding=%d, estimated cost $%.5f",
		report.PromptTokens, report.CompletionTokens, report.EmbeddingTokens, report.EstimatedCost)
}

func serve(ctx context.Context, cancel context.CancelFunc, pipe *pipeline.Pipeline, ledger *usage.Ledger, metrics *monitoring.Collector) {
	apiServer := api.NewServer(pipe, ledger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: apiServer.Router,
	}

	go startMetricsServer(*metricsPort, metrics)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting API server on port %d", *port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, metrics *monitoring.Collector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
