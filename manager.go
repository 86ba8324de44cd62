package weave

import (
	"log/slog"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/weave-syntax/weave/document"
	"github.com/weave-syntax/weave/language"
	"github.com/weave-syntax/weave/layer"
)

// UpdateFunc is called after every parse or reparse with the new snapshot
// and the byte ranges to invalidate. The snapshot is owned by the manager;
// callbacks must not retain it past their return (use Snapshot for that).
type UpdateFunc func(path string, snapshot *layer.Layer, changed []tree_sitter.Range)

// Manager ties a document store to one layer hierarchy per document. It
// parses on open, propagates edits and reparses incrementally on change,
// and is the single point of synchronization that replaces the current
// snapshot with a newly computed one.
type Manager struct {
	registry *language.Registry
	table    map[string]language.Injection
	store    *document.Store

	mu     sync.Mutex
	layers map[string]*layer.Layer

	onUpdate UpdateFunc
	resolver layer.NameResolver
	logger   *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithNameResolver sets the injection name resolver used by all layers.
func WithNameResolver(fn layer.NameResolver) ManagerOption {
	return func(m *Manager) { m.resolver = fn }
}

// NewManager creates a manager over the given registry, injected-language
// table, and document store. Documents whose path matches no registered
// language are left unmanaged.
func NewManager(registry *language.Registry, table map[string]language.Injection, store *document.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry: registry,
		table:    table,
		store:    store,
		layers:   make(map[string]*layer.Layer),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}

	store.OnOpen(m.handleOpen)
	store.OnClose(m.handleClose)
	return m
}

// OnUpdate registers the callback fired after every parse or reparse.
func (m *Manager) OnUpdate(fn UpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = fn
}

// Snapshot returns an independently owned clone of the current layer
// hierarchy for the document, or nil. The caller must Close it.
func (m *Manager) Snapshot(path string) *layer.Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layers[path].Clone()
}

func (m *Manager) layerOptions() []layer.Option {
	opts := []layer.Option{layer.WithLogger(m.logger)}
	if m.resolver != nil {
		opts = append(opts, layer.WithNameResolver(m.resolver))
	}
	return opts
}

func (m *Manager) handleOpen(doc *document.Document) {
	path := doc.Path()
	spec, err := m.registry.SpecifierForPath(path)
	if err != nil {
		return
	}

	root, err := layer.New(spec, m.table, m.registry, m.layerOptions()...)
	if err != nil {
		// No valid layer without a base grammar.
		m.logger.Error("base grammar unavailable", "path", path, "language", spec.Name(), "error", err)
		return
	}

	snapshot := root.Parse(doc.ReadCallback(), true)
	changed := snapshot.ChangedRanges(nil)

	m.mu.Lock()
	m.layers[path] = snapshot
	cb := m.onUpdate
	m.mu.Unlock()

	doc.SetOnEdit(func(edits []tree_sitter.InputEdit) {
		m.handleEdits(path, edits)
	})

	if cb != nil {
		cb(path, snapshot, changed)
	}
}

// handleEdits propagates edits through the hierarchy and reparses
// incrementally.
func (m *Manager) handleEdits(path string, edits []tree_sitter.InputEdit) {
	doc := m.store.Get(path)
	if doc == nil {
		return
	}

	m.mu.Lock()
	current, ok := m.layers[path]
	if !ok {
		m.mu.Unlock()
		return
	}

	for i := range edits {
		current.ApplyEdit(&edits[i])
	}

	next := current.Parse(doc.ReadCallback(), false)
	changed := next.ChangedRanges(current)

	current.Close()
	m.layers[path] = next
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		cb(path, next, changed)
	}
}

// Reparse discards incremental state for the document and parses it from
// scratch, reporting everything as changed. Useful after a query hot-reload.
func (m *Manager) Reparse(path string) {
	doc := m.store.Get(path)
	if doc == nil {
		return
	}

	m.mu.Lock()
	current, ok := m.layers[path]
	if !ok {
		m.mu.Unlock()
		return
	}

	next := current.Parse(doc.ReadCallback(), true)
	changed := next.ChangedRanges(nil)

	current.Close()
	m.layers[path] = next
	cb := m.onUpdate
	m.mu.Unlock()

	if cb != nil {
		cb(path, next, changed)
	}
}

func (m *Manager) handleClose(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.layers[path]; ok {
		l.Close()
		delete(m.layers, path)
	}
}

// Close releases every layer hierarchy the manager owns.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, l := range m.layers {
		l.Close()
		delete(m.layers, path)
	}
}
