// Package ledger provides frame ledgers backed by the output folder or PostgreSQL.
package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.ngs.io/bulletin-maps/internal/adapter/store"
	"go.ngs.io/bulletin-maps/internal/domain"
)

// Dir is a ledger that reads its entries back from the frames present in an
// output folder. Run ids and inputs are not kept.
type Dir struct {
	root     string
	products []domain.Product
}

// NewDir returns a ledger over root recognising the frames of products.
func NewDir(root string, products []domain.Product) *Dir {
	return &Dir{root: root, products: products}
}

// Root returns the folder scanned by the ledger.
func (d *Dir) Root() string {
	return d.root
}

// Record checks that the frame was written under the ledger's folder.
func (d *Dir) Record(_ context.Context, rec domain.FrameRecord) error {
	path := rec.Path
	if path == "" {
		path = filepath.Join(d.root, rec.Name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to record frame %s: %w", rec.Name, err)
	}
	return nil
}

// List scans the folder for frame files.
func (d *Dir) List(_ context.Context, q store.FrameQuery) ([]domain.FrameRecord, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.FrameRecord{}, nil
		}
		return nil, fmt.Errorf("failed to list frames in %s: %w", d.root, err)
	}

	records := make([]domain.FrameRecord, 0)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rec, ok := d.recordOf(e)
		if !ok || !matches(rec, q) {
			continue
		}
		records = append(records, rec)
	}
	sortRecords(records)
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

// Close is a no-op.
func (d *Dir) Close() error {
	return nil
}

func (d *Dir) recordOf(e os.DirEntry) (domain.FrameRecord, bool) {
	info, err := domain.ParseFrameName(e.Name())
	if err != nil {
		return domain.FrameRecord{}, false
	}
	var product string
	for _, p := range d.products {
		if p.FilenamePrefix == info.Prefix {
			product = p.Name
			break
		}
	}
	if product == "" {
		return domain.FrameRecord{}, false
	}
	valid, err := time.Parse("2006-01-02 15", info.Date+" "+info.Hour)
	if err != nil {
		return domain.FrameRecord{}, false
	}
	rec := domain.FrameRecord{
		Product:   product,
		ValidTime: valid.UTC(),
		Name:      e.Name(),
		Path:      filepath.Join(d.root, e.Name()),
	}
	if fi, err := e.Info(); err == nil {
		rec.CreatedAt = fi.ModTime().UTC()
	}
	return rec, true
}

func matches(rec domain.FrameRecord, q store.FrameQuery) bool {
	if q.Product != "" && rec.Product != q.Product {
		return false
	}
	if q.Date != "" && rec.ValidTime.Format("2006-01-02") != q.Date {
		return false
	}
	if !q.Since.IsZero() && rec.ValidTime.Before(q.Since) {
		return false
	}
	return true
}

func sortRecords(records []domain.FrameRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].ValidTime.Equal(records[j].ValidTime) {
			return records[i].ValidTime.Before(records[j].ValidTime)
		}
		return records[i].Name < records[j].Name
	})
}
