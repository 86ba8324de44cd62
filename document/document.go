package document

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Document is a single managed text document.
type Document struct {
	mu      sync.RWMutex
	path    string
	version int32
	text    string

	// onEdit is called after every Apply with the derived edit descriptors
	// (set by the syntax manager).
	onEdit func(edits []tree_sitter.InputEdit)
}

// New creates a document with the given initial content.
func New(path string, version int32, text string) *Document {
	return &Document{path: path, version: version, text: text}
}

// Path returns the document's path.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Version returns the document's current version number.
func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the full text content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// LineAt returns the text of the given zero-based line.
func (d *Document) LineAt(line uint) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return LineAt(d.text, line)
}

// ReadCallback returns a reader over the document's current content,
// suitable for handing to a layer parse. It is idempotent and safe to call
// repeatedly from any offset; each invocation reads the text as of the time
// ReadCallback was called.
func (d *Document) ReadCallback() func(offset int, position tree_sitter.Point) []byte {
	text := d.Text()
	return func(offset int, _ tree_sitter.Point) []byte {
		if offset < 0 || offset >= len(text) {
			return nil
		}
		return []byte(text[offset:])
	}
}

// SetOnEdit registers the callback invoked after every Apply.
func (d *Document) SetOnEdit(fn func(edits []tree_sitter.InputEdit)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onEdit = fn
}

// Apply applies incremental changes, bumps the version, and returns the
// derived edit descriptors.
func (d *Document) Apply(version int32, changes []Change) []tree_sitter.InputEdit {
	d.mu.Lock()
	newText, edits := ApplyChanges(d.text, changes)
	d.text = newText
	d.version = version
	cb := d.onEdit
	d.mu.Unlock()

	// Invoked outside the lock; the callback reads doc.Text().
	if cb != nil && len(edits) > 0 {
		cb(edits)
	}
	return edits
}
