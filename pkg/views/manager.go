package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed templates/*.gohtml
var defaultTemplates embed.FS

// Flash is a one-shot message shown by the alert partial on the next page
// render, styled by its category ("success" or "warning").
type Flash struct {
	Category string
	Message  string
}

// Base carries the fields every page template needs: the page title (also
// used to mark the active navigation link), the username the page's
// navigation links are built for, and any pending flash messages.
type Base struct {
	Title    string
	Username string
	Flashes  []Flash
}

// Manager loads and renders the application's page templates.
// All methods are concurrent-safe.
type Manager struct {
	logger *slog.Logger
	dir    string
	funcs  template.FuncMap
	pages  map[string]*template.Template
	mu     sync.RWMutex
}

// NewManager creates a Manager rendering templates from the "templates"
// subdirectory of dataDir. If the directory is missing or holds no
// templates, the built-in default set is written out first.
func NewManager(logger *slog.Logger, dataDir string) (*Manager, error) {
	m := &Manager{
		logger: logger,
		dir:    filepath.Join(dataDir, "templates"),
		funcs:  makeFuncMap(),
	}

	if err := m.ensureDefaults(); err != nil {
		return nil, fmt.Errorf("failed to write default templates: %w", err)
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("View manager initialized", "dir", m.dir)
	return m, nil
}

// ensureDefaults writes the embedded template set into the template
// directory when no templates are present yet. Existing files are never
// overwritten, so local edits survive restarts.
func (m *Manager) ensureDefaults() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return err
	}

	existing, err := filepath.Glob(filepath.Join(m.dir, "*.gohtml"))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	return fs.WalkDir(defaultTemplates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := defaultTemplates.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(m.dir, d.Name()), data, 0644)
	})
}

// Refresh reparses all templates from the template directory. The layout
// and the alert partial are shared; every other file becomes one page.
// On a parse error the previously loaded set stays active.
func (m *Manager) Refresh() error {
	files, err := filepath.Glob(filepath.Join(m.dir, "*.gohtml"))
	if err != nil {
		return err
	}

	base := template.New("layout.gohtml").Funcs(m.funcs)
	base, err = base.ParseFiles(
		filepath.Join(m.dir, "layout.gohtml"),
		filepath.Join(m.dir, "alert.gohtml"),
	)
	if err != nil {
		return fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".gohtml")
		if name == "layout" || name == "alert" {
			continue
		}
		page, err := base.Clone()
		if err != nil {
			return err
		}
		if page, err = page.ParseFiles(file); err != nil {
			return fmt.Errorf("failed to parse page %q: %w", name, err)
		}
		pages[name] = page
	}

	m.mu.Lock()
	m.pages = pages
	m.mu.Unlock()
	m.logger.Debug("Templates reloaded", "pages", len(pages))
	return nil
}

// Render executes the named page within the shared layout. Handlers should
// render into a buffer so a template failure can still produce a clean
// error response.
func (m *Manager) Render(w io.Writer, page string, data any) error {
	m.mu.RLock()
	tmpl, ok := m.pages[page]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}
	return tmpl.ExecuteTemplate(w, "layout.gohtml", data)
}

// Pages returns the names of all loaded page templates.
func (m *Manager) Pages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.pages))
	for name := range m.pages {
		names = append(names, name)
	}
	return names
}
