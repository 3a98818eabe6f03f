package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"go.ngs.io/bulletin-maps/internal/adapter/discovery"
	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/adapter/store/ledger"
	"go.ngs.io/bulletin-maps/internal/config"
	"go.ngs.io/bulletin-maps/internal/domain"
	"go.ngs.io/bulletin-maps/internal/render"
	"go.ngs.io/bulletin-maps/internal/usecase"
)

const version = "1.0.0"

// Exit codes.
const (
	exitOK = iota
	exitNoDate
	exitNoOutput
	exitMkdir
	exitNoDateDir
	exitOpen
	exitRender
	exitConfig
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bulletin-plot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	productName := fs.String("product", "sst", "Product to render: sst or cur")
	all := fs.Bool("all", false, "Render every matched input file")
	first := fs.Bool("first", false, "Render only the first matched input file")
	showVersion := fs.Bool("version", false, "Show version information")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}
	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "bulletin-plot version %s\n", version)
		return exitOK
	}

	builtin, ok := domain.LookupProduct(*productName)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "bulletin-plot -- unknown product %q (use sst or cur)\n", *productName)
		return exitConfig
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Str("app", builtin.AppName).
		Logger()

	if fs.NArg() < 1 {
		log.Error().Msg("production date is required")
		return exitNoDate
	}
	prodDate := fs.Arg(0)
	if fs.NArg() < 2 {
		log.Error().Msg("output folder is required")
		return exitNoOutput
	}
	outDir := fs.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return exitConfig
	}
	log = log.Level(cfg.LogLevel)
	prod, err := cfg.Product(builtin.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to load product")
		return exitConfig
	}
	log.Info().Str("input", cfg.DataRoot).Str("output", outDir).Str("date", prodDate).Msg("paths set")

	var policy *domain.FilePolicy
	switch {
	case *all && *first:
		log.Error().Msg("-all and -first are mutually exclusive")
		return exitConfig
	case *all:
		p := domain.ProcessAll
		policy = &p
	case *first:
		p := domain.ProcessFirstOnly
		policy = &p
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up renderer")
		return exitConfig
	}

	//nolint:gosec // G301: frames folder is served publicly.
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Error().Err(err).Str("output", outDir).Msg("unable to create output folder")
		return exitMkdir
	}

	ctx := context.Background()
	frames, err := newLedger(ctx, cfg, outDir)
	if err != nil {
		log.Error().Err(err).Msg("failed to open frame ledger")
		return exitConfig
	}
	defer func() { _ = frames.Close() }()

	uc := usecase.NewRenderUseCase(
		discovery.NewFinder(cfg.DataRoot),
		usecase.OpenWith(cfg.Backend),
		renderer,
		frames,
		usecase.Settings{
			MeshPolicy:         cfg.MeshPolicy,
			IrregularTolerance: cfg.IrregularTolerance,
			Catalog:            cfg.Catalog(),
		},
		log,
	)

	result, err := uc.Execute(ctx, usecase.RenderRequest{
		Product:        prod,
		ProductionDate: prodDate,
		OutputDir:      outDir,
		Policy:         policy,
	})
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return exitCode(err)
	}

	for _, f := range result.Frames {
		_, _ = fmt.Fprintln(stdout, f.Path)
	}
	return exitOK
}

func newRenderer(cfg config.Config) (*render.Renderer, error) {
	opts := render.DefaultOptions()
	opts.DPI = cfg.DPI
	if cfg.CoastlinePath != "" {
		coast, err := render.LoadCoastline(cfg.CoastlinePath)
		if err != nil {
			return nil, err
		}
		opts.Coastline = coast
	}
	return render.New(opts), nil
}

func newLedger(ctx context.Context, cfg config.Config, outDir string) (store.FrameLedger, error) {
	if cfg.DatabaseURL != "" {
		return ledger.NewPostgres(ctx, cfg.DatabaseURL)
	}
	return ledger.NewDir(outDir, domain.Products()), nil
}

// exitCode maps a pipeline error to the process exit code.
func exitCode(err error) int {
	var se *usecase.StageError
	if !errors.As(err, &se) {
		return exitConfig
	}
	switch {
	case se.Stage == usecase.StageDiscover && errors.Is(err, discovery.ErrProductionDate):
		return exitNoDateDir
	case se.Stage == usecase.StageOpen:
		return exitOpen
	default:
		return exitRender
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `bulletin-plot - MFS Bulletin Map Renderer

USAGE:
    bulletin-plot [OPTIONS] <production-date> <output-folder>

Renders one PNG map per forecast timestep of the MFS bulletin files found in
<DATA_ROOT>/<production-date>. Frames are named <prefix>_<YYYY-MM-DD>_<HH>.png.

OPTIONS:
    -product string   Product to render: sst or cur (default "sst")
    -all              Render every matched input file
    -first            Render only the first matched input file
    -version          Show version information
    -h, -help         Show this help message

EXIT CODES:
    1    Production date missing
    2    Output folder missing
    3    Output folder cannot be created
    4    Production date folder not found under DATA_ROOT
    5    Input file cannot be opened
    6    Rendering failed
    7    Configuration error

ENVIRONMENT VARIABLES:
    DATA_ROOT             Root of the bulletin folders (default: %s)
    DATASET_BACKEND       NetCDF reader: cgo or native (default: cgo)
    MESH_POLICY           uniform, native or resample (default: uniform)
    IRREGULAR_TOLERANCE   Spacing deviation reported as irregular (default: 0.01)
    IMAGE_DPI             Frame resolution (default: 100)
    COASTLINE_SHAPEFILE   Optional coastline polygons
    ANNOTATIONS_FILE      YAML list of points of interest
    RENDER_CONFIG         YAML product overrides
    DATABASE_URL          Record frames in PostgreSQL
    LOG_LEVEL             debug, info, warn or error (default: info)

EXAMPLES:
    bulletin-plot 20240101 /var/www/bulletin/sst
    bulletin-plot -product cur 20240101 /var/www/bulletin/currents
`, config.DefaultDataRoot)
}
