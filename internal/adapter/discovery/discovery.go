// Package discovery locates the bulletin files of one production date under
// the data root.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrProductionDate is returned when the production date has no directory under the root.
var ErrProductionDate = errors.New("production date directory not found")

// ErrNoInput is returned when the directory holds no file matching the product.
var ErrNoInput = errors.New("no matching input file")

// Finder resolves production dates to input files.
type Finder struct {
	root string
}

// NewFinder returns a finder rooted at root.
func NewFinder(root string) *Finder {
	return &Finder{root: root}
}

// Root returns the data root.
func (f *Finder) Root() string {
	return f.root
}

// Dir returns the directory of a production date and checks that it exists.
func (f *Finder) Dir(prodDate string) (string, error) {
	if prodDate == "" || strings.ContainsAny(prodDate, `/\`) || prodDate == "." || prodDate == ".." {
		return "", fmt.Errorf("%w: invalid production date %q", ErrProductionDate, prodDate)
	}
	dir := filepath.Join(f.root, prodDate)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProductionDate, dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrProductionDate, dir)
	}
	return dir, nil
}

// Find returns the files in the production date directory whose names pass
// match, sorted by name. Subdirectories are not searched.
func (f *Finder) Find(prodDate string, match func(name string) bool) ([]string, error) {
	dir, err := f.Dir(prodDate)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, dir)
	}
	sort.Strings(files)
	return files, nil
}

// Dates lists the production date directories under the root, newest first.
func (f *Finder) Dates() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", f.root, err)
	}
	var dates []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dates = append(dates, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
