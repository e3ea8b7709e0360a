package weights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tnnandi/biom3-docker/internal/fetch"
	"github.com/tnnandi/biom3-docker/internal/storage"
	"github.com/tnnandi/biom3-docker/pkg/types"
)

// ErrUnknownComponent is returned when a requested name matches nothing
// in the catalog.
var ErrUnknownComponent = errors.New("unknown weight component")

// Fetcher downloads a single file to destPath.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string, progress fetch.ProgressFunc) error
}

// Cloner clones a git repository into targetPath.
type Cloner interface {
	Clone(gitURL, targetPath string) error
}

// Manager checks and downloads the weight components the pipeline
// container mounts from weights/.
type Manager struct {
	paths   *storage.Paths
	catalog []Component
	fetcher Fetcher
	cloner  Cloner
}

// NewManager creates a Manager over the default catalog.
func NewManager(paths *storage.Paths, fetcher Fetcher, cloner Cloner) *Manager {
	return &Manager{
		paths:   paths,
		catalog: DefaultCatalog(),
		fetcher: fetcher,
		cloner:  cloner,
	}
}

// Catalog returns the components the manager tracks, in download order.
func (m *Manager) Catalog() []Component {
	return m.catalog
}

// Lookup resolves component names (case-insensitive) against the
// catalog. With no names it returns the full catalog.
func (m *Manager) Lookup(names ...string) ([]Component, error) {
	if len(names) == 0 {
		return m.catalog, nil
	}

	components := make([]Component, 0, len(names))
	for _, name := range names {
		found := false
		for _, comp := range m.catalog {
			if strings.EqualFold(comp.Name, name) {
				components = append(components, comp)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
		}
	}

	return components, nil
}

// Status reports whether a component is present on disk.
func (m *Manager) Status(comp Component) types.WeightStatus {
	switch comp.Kind {
	case KindRepo:
		dir := m.repoPath(comp)

		// A clone counts once its config.json landed
		present := false
		if _, err := os.Stat(filepath.Join(dir, "config.json")); err == nil {
			present = true
		}

		status := types.WeightStatus{
			Component: comp.Name,
			Path:      dir,
			Present:   present,
			SizeBytes: storage.DirSize(dir),
		}

		// Record which revision the clone actually holds
		if present {
			if rev, err := fetch.RepoRevision(dir); err == nil {
				status.Revision = rev
			}
		}

		return status

	default:
		filePath := filepath.Join(m.paths.WeightComponentDir(comp.Dir), comp.Filename)

		var size int64
		if info, err := os.Stat(filePath); err == nil {
			size = info.Size()
		}

		return types.WeightStatus{
			Component: comp.Name,
			Path:      filePath,
			Present:   size > MinWeightFileSize,
			SizeBytes: size,
		}
	}
}

// StatusAll reports the status of every catalog component.
func (m *Manager) StatusAll() []types.WeightStatus {
	statuses := make([]types.WeightStatus, 0, len(m.catalog))
	for _, comp := range m.catalog {
		statuses = append(statuses, m.Status(comp))
	}
	return statuses
}

// AllPresent reports whether every catalog component is on disk.
func (m *Manager) AllPresent() bool {
	for _, status := range m.StatusAll() {
		if !status.Present {
			return false
		}
	}
	return true
}

// Ensure downloads a component unless it is already present. It reports
// whether anything was fetched. progress may be nil and is ignored for
// repository components, which stream git output directly.
func (m *Manager) Ensure(ctx context.Context, comp Component, progress fetch.ProgressFunc) (bool, error) {
	status := m.Status(comp)
	if status.Present {
		return false, nil
	}

	if err := os.MkdirAll(m.paths.WeightComponentDir(comp.Dir), 0755); err != nil {
		return false, fmt.Errorf("failed to create weights directory: %w", err)
	}

	switch comp.Kind {
	case KindRepo:
		// Clear out a broken partial clone before retrying
		if _, err := os.Stat(status.Path); err == nil {
			if err := os.RemoveAll(status.Path); err != nil {
				return false, fmt.Errorf("failed to remove stale clone: %w", err)
			}
		}

		if err := m.cloner.Clone(comp.RepoURL, status.Path); err != nil {
			return false, fmt.Errorf("failed to clone %s: %w", comp.Name, err)
		}

	default:
		if err := m.fetcher.Fetch(ctx, comp.URL, status.Path, progress); err != nil {
			return false, fmt.Errorf("failed to download %s: %w", comp.Name, err)
		}

		// An auth wall or quota page downloads fine but is tiny
		if after := m.Status(comp); !after.Present {
			os.Remove(status.Path)
			return false, fmt.Errorf("downloaded %s is only %d bytes, expected a full checkpoint; check repository access and retry",
				comp.Name, after.SizeBytes)
		}
	}

	return true, nil
}

// repoPath is where a repository component gets cloned.
func (m *Manager) repoPath(comp Component) string {
	return filepath.Join(m.paths.WeightComponentDir(comp.Dir), path.Base(comp.RepoURL))
}
