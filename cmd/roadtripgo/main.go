package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"roadtripgo/internal/api"
	"roadtripgo/pkg/audio"
	"roadtripgo/pkg/cache"
	"roadtripgo/pkg/config"
	"roadtripgo/pkg/content"
	"roadtripgo/pkg/history"
	"roadtripgo/pkg/images"
	"roadtripgo/pkg/llm"
	"roadtripgo/pkg/llm/gemini"
	"roadtripgo/pkg/llm/mock"
	"roadtripgo/pkg/logging"
	"roadtripgo/pkg/model"
	"roadtripgo/pkg/narrator"
	"roadtripgo/pkg/planner"
	"roadtripgo/pkg/poi"
	"roadtripgo/pkg/probe"
	"roadtripgo/pkg/proximity"
	"roadtripgo/pkg/request"
	"roadtripgo/pkg/telemetry"
	"roadtripgo/pkg/tracker"
	"roadtripgo/pkg/version"
	"roadtripgo/pkg/voice"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/roadtrip.yaml", "Path to config file")
	poiFile    = flag.String("pois", "data/pois.json", "POI catalog to preload (JSON array)")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env keeps the API key out of the config file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("RoadTrip Started", "version", version.Version)

	histStore, err := history.NewStore(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize history store: %w", err)
	}
	defer histStore.Close()

	llmProv, closeLLM, err := initLLM(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	defer closeLLM()

	poiMgr := poi.NewManager()
	if n, err := loadPOIs(poiMgr, *poiFile); err != nil {
		slog.Warn("POI catalog not loaded", "path", *poiFile, "error", err)
	} else {
		slog.Info("POI catalog loaded", "path", *poiFile, "count", n)
	}

	vehicle := vehicleFromConfig(cfg.Vehicle)
	tourPlanner := planner.New(poiMgr, planner.Config{
		SafetyBuffer:       cfg.Planner.SafetyBuffer,
		ChargeTarget:       cfg.Planner.ChargeTarget,
		ChargerSearchMiles: cfg.Planner.ChargerSearchRadius.Miles(),
		ChargeDwell:        time.Duration(cfg.Planner.ChargeDwell),
	})

	source, err := initTelemetry(cfg, vehicle)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer source.Close()

	tr := tracker.New()
	reqClient := request.New()
	reqClient.SetTracker(tr)
	fetcher := images.NewWikipediaFetcher(reqClient, cfg.Images.Language)
	if cfg.Images.Endpoint != "" {
		fetcher.APIEndpoint = cfg.Images.Endpoint
	}

	audioMgr := audio.New()
	prompter := voice.NewPrompter()

	gen := content.NewGenerator(llmProv)
	gen.SetCache(cache.New(4 * time.Hour))

	orch := narrator.New(cfg.Narrator, proximity.Thresholds{
		TeaserWindow:        time.Duration(cfg.Proximity.TeaserWindow),
		DetailWindow:        time.Duration(cfg.Proximity.DetailWindow),
		ArrivalRadiusMiles:  cfg.Proximity.ArrivalRadius.Miles(),
		ApproachRadiusMiles: cfg.Proximity.ApproachRadius.Miles(),
		RecedingPolls:       cfg.Proximity.RecedingPolls,
	}, narrator.Deps{
		Generator: gen,
		Audio:     audio.NewPlayer(audioMgr),
		Voice:     prompter,
		Images:    fetcher,
		Source:    source,
		History:   histStore,
	})

	probes := []probe.Probe{
		{
			Name:     "LLM Provider",
			Check:    llmProv.HealthCheck,
			Critical: true,
		},
		{
			Name:     "Telemetry Source",
			Check:    func(c context.Context) error { _, err := source.GetTelemetry(c); return err },
			Critical: false,
		},
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	return runServer(ctx, cfg, orch, tourPlanner, poiMgr, histStore, prompter, audioMgr, tr, vehicle)
}

func initLLM(cfg *config.Config) (llm.Provider, func(), error) {
	switch cfg.LLM.Provider {
	case "mock":
		return mock.New(), func() {}, nil
	case "gemini", "":
		client, err := gemini.NewClient(cfg.LLM, "logs/prompt_history.log")
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %q", cfg.LLM.Provider)
	}
}

func initTelemetry(cfg *config.Config, vehicle model.Vehicle) (telemetry.Source, error) {
	switch cfg.Telemetry.Provider {
	case "drive", "":
		return telemetry.NewDriveSim(cfg.Telemetry.Drive, vehicle), nil
	default:
		return nil, fmt.Errorf("unknown telemetry provider: %q", cfg.Telemetry.Provider)
	}
}

func vehicleFromConfig(v config.VehicleConfig) model.Vehicle {
	return model.Vehicle{
		Name:                  v.Name,
		BatteryCapacityKWh:    v.BatteryCapacityKWh,
		ConsumptionKWhPerMile: v.ConsumptionKWhPerMile,
		RatedRangeMiles:       v.RatedRangeMiles,
		ChargingPorts:         v.ChargingPorts,
	}
}

// loadPOIs reads a JSON array of POIs into the catalog.
func loadPOIs(mgr *poi.Manager, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var pois []*model.POI
	if err := json.Unmarshal(data, &pois); err != nil {
		return 0, fmt.Errorf("failed to parse POI catalog: %w", err)
	}
	if err := mgr.AddAll(pois); err != nil {
		return 0, err
	}
	return len(pois), nil
}

func runServer(ctx context.Context, cfg *config.Config, orch *narrator.Orchestrator, tourPlanner *planner.Planner, poiMgr *poi.Manager, histStore history.Store, prompter *voice.Prompter, audioMgr *audio.Manager, tr *tracker.Tracker, vehicle model.Vehicle) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewTourHandler(tourPlanner, poiMgr, orch, vehicle),
		api.NewPOIHandler(poiMgr),
		api.NewHistoryHandler(histStore),
		api.NewVoiceHandler(prompter),
		api.NewAudioHandler(audioMgr),
		api.NewEventsHandler(orch),
		api.NewStatsHandler(tr),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	if orch.Running() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := orch.StopTour(stopCtx); err != nil {
			slog.Error("Failed to stop tour cleanly", "error", err)
		}
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
