package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/bulletin-maps/internal/adapter/discovery"
	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/domain"
	"go.ngs.io/bulletin-maps/internal/usecase"
)

// Handler handles HTTP requests for rendered bulletin frames.
type Handler struct {
	renderUC  *usecase.RenderUseCase
	ledger    store.FrameLedger
	products  []domain.Product
	catalog   domain.Catalog
	outputDir string

	// One pipeline run at a time.
	running sync.Mutex
}

// NewHandler creates a new HTTP handler serving frames from outputDir.
func NewHandler(renderUC *usecase.RenderUseCase, ledger store.FrameLedger, products []domain.Product, catalog domain.Catalog, outputDir string) *Handler {
	return &Handler{
		renderUC:  renderUC,
		ledger:    ledger,
		products:  products,
		catalog:   catalog,
		outputDir: outputDir,
	}
}

// ProductInfo describes a product in GET /v1/products.
type ProductInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Kind        string         `json:"kind"`
	Variables   []string       `json:"variables"`
	Units       string         `json:"units"`
	FilePolicy  string         `json:"file_policy"`
	Prefix      string         `json:"prefix"`
	WidthIn     float64        `json:"width_in"`
	HeightIn    float64        `json:"height_in"`
	Extent      *domain.Bounds `json:"extent,omitempty"`
}

// GetProducts handles GET /v1/products.
func (h *Handler) GetProducts(c *gin.Context) {
	response := make([]ProductInfo, len(h.products))
	for i, p := range h.products {
		kind := "scalar"
		if p.Kind == domain.KindVector {
			kind = "vector"
		}
		response[i] = ProductInfo{
			Name:        p.Name,
			Description: p.Description,
			Kind:        kind,
			Variables:   p.Variables,
			Units:       p.Units,
			FilePolicy:  p.FilePolicy.String(),
			Prefix:      p.FilenamePrefix,
			WidthIn:     p.WidthIn,
			HeightIn:    p.HeightIn,
			Extent:      p.Extent,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"products": response,
		"count":    len(response),
	})
}

// PointInfo is a point of interest in GET /v1/annotations.
type PointInfo struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// GetAnnotations handles GET /v1/annotations.
func (h *Handler) GetAnnotations(c *gin.Context) {
	points := h.catalog.Points()
	response := make([]PointInfo, len(points))
	for i, p := range points {
		response[i] = PointInfo{Name: p.Name, Lon: p.Lon, Lat: p.Lat}
	}

	c.JSON(http.StatusOK, gin.H{
		"points": response,
		"count":  len(response),
	})
}

// GetFrames handles GET /v1/frames.
func (h *Handler) GetFrames(c *gin.Context) {
	q := store.FrameQuery{Date: c.Query("date")}

	if name := c.Query("product"); name != "" {
		p, ok := h.product(name)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown product %q", name)})
			return
		}
		q.Product = p.Name
	}
	if q.Date != "" {
		if _, err := time.Parse("2006-01-02", q.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date (expected YYYY-MM-DD): %v", err)})
			return
		}
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		q.Limit = limit
	}

	frames, err := h.ledger.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"frames": frames,
		"count":  len(frames),
	})
}

// GetFrame handles GET /v1/frames/:name and serves the PNG.
func (h *Handler) GetFrame(c *gin.Context) {
	name := c.Param("name")
	if filepath.Base(name) != name {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame name"})
		return
	}
	if _, err := domain.ParseFrameName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path := filepath.Join(h.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("frame %s not found", name)})
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.File(path)
}

// RenderBody is the body of POST /v1/renders.
type RenderBody struct {
	Product        string `json:"product" binding:"required"`
	ProductionDate string `json:"production_date" binding:"required"`
	Files          string `json:"files"` // "all" or "first"; empty keeps the product default.
}

// PostRender handles POST /v1/renders. Runs the pipeline synchronously.
func (h *Handler) PostRender(c *gin.Context) {
	var body RenderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prod, ok := h.product(body.Product)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown product %q", body.Product)})
		return
	}
	req := usecase.RenderRequest{
		Product:        prod,
		ProductionDate: body.ProductionDate,
		OutputDir:      h.outputDir,
	}
	if body.Files != "" {
		policy, err := domain.ParseFilePolicy(body.Files)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Policy = &policy
	}

	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "a render is already running"})
		return
	}
	defer h.running.Unlock()

	//nolint:gosec // G301: frames folder is served publicly.
	if err := os.MkdirAll(h.outputDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to create output folder: %v", err)})
		return
	}

	result, err := h.renderUC.Execute(c.Request.Context(), req)
	if err != nil {
		c.JSON(renderStatus(err), gin.H{"error": err.Error(), "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) product(name string) (domain.Product, bool) {
	want, ok := domain.LookupProduct(name)
	if !ok {
		return domain.Product{}, false
	}
	for _, p := range h.products {
		if p.Name == want.Name {
			return p, true
		}
	}
	return domain.Product{}, false
}

func renderStatus(err error) int {
	var se *usecase.StageError
	if !errors.As(err, &se) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, discovery.ErrProductionDate):
		return http.StatusNotFound
	case se.Stage == usecase.StageOpen, se.Stage == usecase.StageMetadata, se.Stage == usecase.StageField:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
