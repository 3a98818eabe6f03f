// Package main provides the bulletin frames HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.ngs.io/bulletin-maps/internal/adapter/discovery"
	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/adapter/store/ledger"
	"go.ngs.io/bulletin-maps/internal/config"
	httpHandler "go.ngs.io/bulletin-maps/internal/http"
	"go.ngs.io/bulletin-maps/internal/render"
	"go.ngs.io/bulletin-maps/internal/usecase"
)

const version = "1.0.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("bulletin-server version %s\n", version)
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("app", "bulletin-server").Logger()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = log.Logger.Level(cfg.LogLevel)

	log.Info().Msg("Starting bulletin frame server...")
	log.Info().Msgf("Port: %d", cfg.Port)
	log.Info().Msgf("Data root: %s", cfg.DataRoot)
	log.Info().Msgf("Frames directory: %s", cfg.OutputDir)
	log.Info().Msgf("Dataset backend: %s, mesh policy: %s", cfg.Backend, cfg.MeshPolicy)

	products, err := cfg.Products()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load products")
	}

	// Initialize renderer (coastline overlay optional).
	opts := render.DefaultOptions()
	opts.DPI = cfg.DPI
	if cfg.CoastlinePath != "" {
		coast, err := render.LoadCoastline(cfg.CoastlinePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load coastline")
		}
		opts.Coastline = coast
		log.Info().Msgf("Coastline: %s (%d polygons)", cfg.CoastlinePath, coast.Len())
	} else {
		log.Info().Msg("Coastline overlay disabled (no shapefile configured)")
	}

	// Initialize frame ledger.
	var frames store.FrameLedger
	if cfg.DatabaseURL != "" {
		pg, err := ledger.NewPostgres(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open frame ledger")
		}
		frames = pg
		log.Info().Msg("Frame ledger: PostgreSQL")
	} else {
		frames = ledger.NewDir(cfg.OutputDir, products)
		log.Info().Msg("Frame ledger: frames directory")
	}
	defer func() { _ = frames.Close() }()

	// Initialize use case.
	catalog := cfg.Catalog()
	renderUC := usecase.NewRenderUseCase(
		discovery.NewFinder(cfg.DataRoot),
		usecase.OpenWith(cfg.Backend),
		render.New(opts),
		frames,
		usecase.Settings{
			MeshPolicy:         cfg.MeshPolicy,
			IrregularTolerance: cfg.IrregularTolerance,
			Catalog:            catalog,
		},
		log.Logger,
	)

	// Setup router.
	handler := httpHandler.NewHandler(renderUC, frames, products, catalog, cfg.OutputDir)
	router := httpHandler.SetupRouter(handler, cfg.AllowedOrigins)

	// Start server.
	addr := cfg.ListenAddr()
	log.Info().Msgf("Server listening on %s", addr)
	log.Info().Msgf("Health check: http://localhost:%d/health", cfg.Port)

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Bulletin Frame Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  bulletin-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_ROOT               Root of the bulletin folders")
	fmt.Println("  OUTPUT_DIR              Frames directory (default: ./frames)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  DATASET_BACKEND         NetCDF reader: cgo or native (default: cgo)")
	fmt.Println("  MESH_POLICY             uniform, native or resample (default: uniform)")
	fmt.Println("  IMAGE_DPI               Frame resolution (default: 100)")
	fmt.Println("  COASTLINE_SHAPEFILE     Coastline polygons (optional)")
	fmt.Println("  ANNOTATIONS_FILE        YAML list of points of interest (optional)")
	fmt.Println("  RENDER_CONFIG           YAML product overrides (optional)")
	fmt.Println("  DATABASE_URL            PostgreSQL frame ledger (optional)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  bulletin-server")
	fmt.Println()
	fmt.Println("  # Serve frames from a custom folder on port 3000")
	fmt.Println("  PORT=3000 OUTPUT_DIR=/var/www/bulletin bulletin-server")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                  Health check")
	fmt.Println("  GET  /v1/products             List products")
	fmt.Println("  GET  /v1/annotations          List points of interest")
	fmt.Println("  GET  /v1/frames               List frames (product, date, limit)")
	fmt.Println("  GET  /v1/frames/:name         Fetch a frame PNG")
	fmt.Println("  POST /v1/renders              Render a production date")
	fmt.Println()
}
