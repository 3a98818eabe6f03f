package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"go.ngs.io/bulletin-maps/internal/adapter/dataset"
	"go.ngs.io/bulletin-maps/internal/adapter/discovery"
	"go.ngs.io/bulletin-maps/internal/adapter/interp"
	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/domain"
	"go.ngs.io/bulletin-maps/internal/render"
)

// BulletinDateAttr is the global attribute holding the bulletin production date.
const BulletinDateAttr = "bulletin_date"

// Opener opens one input file for the given variables.
type Opener func(path string, names dataset.Names) (dataset.Dataset, error)

// OpenWith returns an Opener using backend.
func OpenWith(backend dataset.Backend) Opener {
	return func(path string, names dataset.Names) (dataset.Dataset, error) {
		return dataset.Open(backend, path, names)
	}
}

// FrameRenderer draws one frame as an image.
type FrameRenderer interface {
	Render(w io.Writer, f render.Frame) error
}

// Settings tune how fields are placed on the display mesh.
type Settings struct {
	MeshPolicy         domain.MeshPolicy
	IrregularTolerance float64
	Catalog            domain.Catalog
}

// RenderRequest asks for the frames of one product and production date.
type RenderRequest struct {
	Product        domain.Product
	ProductionDate string
	OutputDir      string
	Policy         *domain.FilePolicy // Overrides the product's file policy.
}

// RenderResult lists what a run produced.
type RenderResult struct {
	RunID          string               `json:"run_id"`
	Product        string               `json:"product"`
	ProductionDate string               `json:"production_date"`
	Inputs         []string             `json:"inputs"`
	Frames         []domain.FrameRecord `json:"frames"`
}

// RenderUseCase drives discovery, rendering and recording of bulletin frames.
type RenderUseCase struct {
	finder   *discovery.Finder
	open     Opener
	renderer FrameRenderer
	ledger   store.FrameLedger
	settings Settings
	log      zerolog.Logger
	now      func() time.Time
}

// NewRenderUseCase creates a new render use case. ledger may be nil.
func NewRenderUseCase(finder *discovery.Finder, open Opener, renderer FrameRenderer, ledger store.FrameLedger, settings Settings, logger zerolog.Logger) *RenderUseCase {
	return &RenderUseCase{
		finder:   finder,
		open:     open,
		renderer: renderer,
		ledger:   ledger,
		settings: settings,
		log:      logger,
		now:      time.Now,
	}
}

// Validate checks if the request is valid.
func (r *RenderRequest) Validate() error {
	if r.ProductionDate == "" {
		return fmt.Errorf("production date is required")
	}
	if r.OutputDir == "" {
		return fmt.Errorf("output folder is required")
	}
	return r.Product.Validate()
}

// Execute renders every timestep of the files selected for the request.
// Files are processed one at a time; the first failure stops the run and is
// returned as a *StageError together with the frames written so far.
func (uc *RenderUseCase) Execute(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	res := &RenderResult{
		RunID:          uuid.NewString(),
		Product:        req.Product.Name,
		ProductionDate: req.ProductionDate,
		Inputs:         []string{},
		Frames:         []domain.FrameRecord{},
	}
	log := uc.log.With().
		Str("run_id", res.RunID).
		Str("product", req.Product.Name).
		Logger()

	log.Info().
		Str("input", filepath.Join(uc.finder.Root(), req.ProductionDate)).
		Str("output", req.OutputDir).
		Msg("starting run")

	files, err := uc.finder.Find(req.ProductionDate, req.Product.Matches)
	if errors.Is(err, discovery.ErrNoInput) {
		log.Warn().Err(err).Msg("nothing to render")
		return res, nil
	}
	if err != nil {
		return res, stageErr(StageDiscover, req.ProductionDate, err)
	}

	policy := req.Product.FilePolicy
	if req.Policy != nil {
		policy = *req.Policy
	}
	if policy == domain.ProcessFirstOnly && len(files) > 1 {
		log.Info().Int("matched", len(files)).Msg("rendering the first matched file only")
		files = files[:1]
	}

	for _, path := range files {
		res.Inputs = append(res.Inputs, path)
		frames, err := uc.ProcessFile(ctx, res.RunID, req.Product, path, req.OutputDir)
		res.Frames = append(res.Frames, frames...)
		if err != nil {
			log.Error().Err(err).Str("input", path).Msg("run aborted")
			return res, err
		}
	}

	log.Info().Int("files", len(res.Inputs)).Int("frames", len(res.Frames)).Msg("run complete")
	return res, nil
}

// ProcessFile renders every timestep of one input file into outDir.
// The dataset is closed before ProcessFile returns, on every path.
func (uc *RenderUseCase) ProcessFile(ctx context.Context, runID string, prod domain.Product, path, outDir string) ([]domain.FrameRecord, error) {
	log := uc.log.With().Str("run_id", runID).Str("input", filepath.Base(path)).Logger()

	ds, err := uc.open(path, dataset.Names{Variables: prod.Variables})
	if err != nil {
		return nil, stageErr(StageOpen, path, err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close dataset")
		}
	}()

	lats, lons := ds.Latitudes(), ds.Longitudes()
	bounds, err := domain.BoundsOf(lats, lons)
	if err != nil {
		return nil, stageErr(StageBounds, path, err)
	}
	log.Debug().Stringer("bounds", bounds).Int("steps", len(ds.Times())).Msg("dataset opened")

	bulletinDate, ok := ds.Attr(BulletinDateAttr)
	if !ok {
		return nil, stageErr(StageMetadata, path, fmt.Errorf("%w: no %s attribute", ErrMissingMetadata, BulletinDateAttr))
	}

	mesh, err := uc.mesh(bounds, lons, lats, log)
	if err != nil {
		return nil, stageErr(StageBounds, path, err)
	}

	var records []domain.FrameRecord
	for t, valid := range ds.Times() {
		rec, err := uc.renderStep(ds, prod, mesh, lons, lats, t, valid, bulletinDate, path, outDir)
		if err != nil {
			return records, err
		}
		rec.RunID = runID
		if uc.ledger != nil {
			if err := uc.ledger.Record(ctx, rec); err != nil {
				return records, stageErr(StageRecord, path, err)
			}
		}
		records = append(records, rec)
		log.Info().Str("frame", rec.Name).Msg("frame written")
	}
	return records, nil
}

func (uc *RenderUseCase) renderStep(
	ds dataset.Dataset,
	prod domain.Product,
	mesh domain.Mesh,
	lons, lats []float64,
	t int,
	valid time.Time,
	bulletinDate, path, outDir string,
) (domain.FrameRecord, error) {
	iso := domain.FormatTimestamp(valid)

	components := make([]domain.Field, len(prod.Variables))
	for i, name := range prod.Variables {
		values, err := ds.Surface(name, t)
		if err != nil {
			return domain.FrameRecord{}, stageErr(StageField, path, err)
		}
		components[i], err = uc.place(values, mesh, lons, lats)
		if err != nil {
			return domain.FrameRecord{}, stageErr(StageField, path, err)
		}
	}
	field, err := prod.Derive(components)
	if err != nil {
		return domain.FrameRecord{}, stageErr(StageField, path, err)
	}

	data, err := domain.NewTitleData(bulletinDate, iso)
	if err != nil {
		return domain.FrameRecord{}, stageErr(StageMetadata, path, err)
	}
	title, err := prod.Title(data)
	if err != nil {
		return domain.FrameRecord{}, stageErr(StageFrame, path, err)
	}
	name, err := domain.FrameName(prod.FilenamePrefix, iso)
	if err != nil {
		return domain.FrameRecord{}, stageErr(StageFrame, path, err)
	}

	frame := render.Frame{
		Product: prod,
		Title:   title,
		Mesh:    mesh,
		Field:   field,
		Window:  prod.Extent,
		Catalog: uc.settings.Catalog,
	}
	if prod.WantsVectorGlyphs() {
		frame.U, frame.V = components[0], components[1]
	}

	out := filepath.Join(outDir, name)
	if stage, err := uc.write(out, frame); err != nil {
		return domain.FrameRecord{}, stageErr(stage, path, err)
	}

	return domain.FrameRecord{
		Product:      prod.Name,
		BulletinDate: data.BulletinDate,
		ValidTime:    valid.UTC(),
		Name:         name,
		Path:         out,
		Input:        filepath.Base(path),
		CreatedAt:    uc.now().UTC(),
	}, nil
}

// mesh builds the display mesh of one file according to the mesh policy.
func (uc *RenderUseCase) mesh(b domain.Bounds, lons, lats []float64, log zerolog.Logger) (domain.Mesh, error) {
	if uc.settings.MeshPolicy == domain.MeshNative {
		return domain.MeshFromAxes(lons, lats), nil
	}
	if uc.settings.MeshPolicy == domain.MeshUniform {
		dLon, dLat := domain.SpacingDeviation(lons), domain.SpacingDeviation(lats)
		if dLon > uc.settings.IrregularTolerance || dLat > uc.settings.IrregularTolerance {
			log.Warn().
				Float64("lon_deviation", dLon).
				Float64("lat_deviation", dLat).
				Msg("irregular grid drawn on a uniform mesh; positions are approximate")
		}
	}
	return domain.BuildMesh(b, len(lons), len(lats))
}

// place puts native values on the display mesh.
func (uc *RenderUseCase) place(values [][]float64, mesh domain.Mesh, lons, lats []float64) (domain.Field, error) {
	if uc.settings.MeshPolicy != domain.MeshResample {
		f := domain.Field(values)
		return f, f.Validate()
	}
	xs, ys := mesh.Axes()
	g := interp.Grid{X: lons, Y: lats, Values: values}
	out, err := g.Resample(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("failed to resample field: %w", err)
	}
	return domain.Field(out), nil
}

// write renders frame into a temporary file next to path and renames it into place.
func (uc *RenderUseCase) write(path string, frame render.Frame) (Stage, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".frame-*.png")
	if err != nil {
		return StageWrite, fmt.Errorf("failed to create frame file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := uc.renderer.Render(tmp, frame); err != nil {
		_ = tmp.Close()
		return StageRender, fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return StageWrite, fmt.Errorf("failed to write frame file: %w", err)
	}
	//nolint:gosec // G302: frames are published read-only to the web server.
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return StageWrite, fmt.Errorf("failed to set frame permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return StageWrite, fmt.Errorf("failed to move frame into place: %w", err)
	}
	return "", nil
}
