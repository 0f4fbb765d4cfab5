package favorites

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazybrowse/internal/models"
	"gopkg.in/yaml.v3"
)

// Manager manages favourite tables
type Manager struct {
	path      string
	favorites []models.FavoriteTable
}

// NewManager creates a new favorites manager
func NewManager(configDir string) (*Manager, error) {
	path := filepath.Join(configDir, "favorites.yaml")

	m := &Manager{
		path:      path,
		favorites: []models.FavoriteTable{},
	}

	// Load existing favorites if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load favorites: %w", err)
		}
	}

	return m, nil
}

// Load loads favorites from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read favorites file: %w", err)
	}

	if err := yaml.Unmarshal(data, &m.favorites); err != nil {
		return fmt.Errorf("failed to parse favorites: %w", err)
	}

	return nil
}

// Save saves favorites to YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.favorites)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write favorites file: %w", err)
	}

	return nil
}

// Add pins a table. Adding a table twice returns the existing favourite.
func (m *Manager) Add(projectID int, ref models.TableRef) (*models.FavoriteTable, error) {
	ref.Schema = strings.TrimSpace(ref.Schema)
	ref.Table = strings.TrimSpace(ref.Table)
	if ref.Schema == "" || ref.Table == "" {
		return nil, fmt.Errorf("favorite table needs a schema and a table name")
	}

	if i := m.indexOf(projectID, ref); i >= 0 {
		fav := m.favorites[i]
		return &fav, nil
	}

	favorite := models.FavoriteTable{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Schema:    ref.Schema,
		Table:     ref.Table,
		CreatedAt: time.Now(),
	}

	m.favorites = append(m.favorites, favorite)

	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}

	return &favorite, nil
}

// Delete deletes a favorite by ID
func (m *Manager) Delete(id string) error {
	for i, fav := range m.favorites {
		if fav.ID == id {
			m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)
			if err := m.Save(); err != nil {
				return fmt.Errorf("failed to save favorites after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("favorite with ID '%s' was not found", id)
}

// IsFavorite reports whether a table is pinned in a project
func (m *Manager) IsFavorite(projectID int, ref models.TableRef) bool {
	return m.indexOf(projectID, ref) >= 0
}

// Toggle pins an unpinned table and unpins a pinned one.
// It reports whether the table is a favourite afterwards.
func (m *Manager) Toggle(projectID int, ref models.TableRef) (bool, error) {
	if i := m.indexOf(projectID, ref); i >= 0 {
		return false, m.Delete(m.favorites[i].ID)
	}
	if _, err := m.Add(projectID, ref); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the favourites of a project sorted by schema and table
func (m *Manager) List(projectID int) []models.FavoriteTable {
	var out []models.FavoriteTable
	for _, fav := range m.favorites {
		if fav.ProjectID == projectID {
			out = append(out, fav)
		}
	}
	slices.SortFunc(out, func(a, b models.FavoriteTable) int {
		return strings.Compare(a.Ref().String(), b.Ref().String())
	})
	return out
}

func (m *Manager) indexOf(projectID int, ref models.TableRef) int {
	for i, fav := range m.favorites {
		if fav.ProjectID == projectID && fav.Ref() == ref {
			return i
		}
	}
	return -1
}
