package cache

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"geoview/internal/debug"
	"geoview/internal/geo"
)

// Manager downloads and caches zipped shapefile datasets
type Manager struct {
	cacheDir string
	client   *http.Client
}

// DataFile represents a zipped dataset to download
type DataFile struct {
	Name     string // Friendly name
	URL      string // Download URL
	Base     string // Base filename (without extension)
	Optional bool   // If true, failure to download won't stop the app
}

// NaturalEarthFiles are the 1:50m datasets the shapefile loader reads
var NaturalEarthFiles = []DataFile{
	{
		Name:     "Boundary lines",
		URL:      "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_admin_0_boundary_lines_land.zip",
		Base:     geo.BordersBase,
		Optional: true,
	},
	{
		Name:     "Rivers",
		URL:      "https://naciscdn.org/naturalearth/50m/physical/ne_50m_rivers_lake_centerlines.zip",
		Base:     geo.RiversBase,
		Optional: true,
	},
	{
		Name:     "Coastlines",
		URL:      "https://naciscdn.org/naturalearth/50m/physical/ne_50m_coastline.zip",
		Base:     geo.CoastlineBase,
		Optional: true,
	},
	{
		Name:     "Populated Places",
		URL:      "https://naciscdn.org/naturalearth/50m/cultural/ne_50m_populated_places.zip",
		Base:     geo.PlacesBase,
		Optional: true,
	},
}

// NewManager creates a cache manager rooted at cacheDir
func NewManager(cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Manager{
		cacheDir: cacheDir,
		client:   &http.Client{},
	}, nil
}

// EnsureData makes sure every file is present, downloading missing ones.
// Optional files that fail are skipped with a warning.
func (m *Manager) EnsureData(ctx context.Context, files []DataFile) error {
	for _, file := range files {
		if err := m.ensureFile(ctx, file); err != nil {
			if file.Optional && ctx.Err() == nil {
				debug.Logger().Warn("skipping optional dataset", "name", file.Name, "error", err)
				continue
			}
			return fmt.Errorf("failed to ensure %s: %w", file.Name, err)
		}
	}
	return nil
}

// ensureFile checks if a data file exists, downloads if needed
func (m *Manager) ensureFile(ctx context.Context, file DataFile) error {
	if m.Has(file.Base) {
		return nil
	}

	debug.Logger().Info("downloading dataset", "name", file.Name, "url", file.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "geoview/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s (URL: %s)", resp.Status, file.URL)
	}

	tmpFile, err := os.CreateTemp("", "geoview_*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to save download: %w", err)
	}

	if err := m.extractZip(tmpFile.Name(), m.cacheDir); err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	if !m.Has(file.Base) {
		return fmt.Errorf("archive did not contain %s.shp", file.Base)
	}

	debug.Logger().Info("dataset ready", "name", file.Name)
	return nil
}

// extractZip flattens the archive into destDir, skipping directories and dot files
func (m *Manager) extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(filepath.Base(f.Name), ".") {
			continue
		}
		if err := extractFile(f, filepath.Join(destDir, filepath.Base(f.Name))); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// Has reports whether base.shp is cached
func (m *Manager) Has(base string) bool {
	_, err := os.Stat(m.GetDataPath(base))
	return err == nil
}

// GetDataPath returns the cached .shp path for base
func (m *Manager) GetDataPath(base string) string {
	return filepath.Join(m.cacheDir, base+".shp")
}

// GetCacheDir returns the cache directory
func (m *Manager) GetCacheDir() string {
	return m.cacheDir
}
