// Package document provides a thread-safe store of open text documents with
// byte-addressed incremental edits and the position math the syntax layers
// need. The store is the text-buffer collaborator of the parse-tree manager;
// it knows nothing about grammars or trees.
package document

import (
	"sync"
)

// Store is a thread-safe collection of open documents.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document

	onOpen  []func(doc *Document)
	onClose []func(path string)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// OnOpen registers a callback fired when a document is opened. Callbacks
// fire in registration order.
func (s *Store) OnOpen(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, fn)
}

// OnClose registers a callback fired when a document is closed.
func (s *Store) OnClose(fn func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = append(s.onClose, fn)
}

// Get returns the document at the given path, or nil.
func (s *Store) Get(path string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[path]
}

// Paths returns all open document paths.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	return paths
}

// Open adds a document and fires the open callbacks.
func (s *Store) Open(path string, version int32, text string) *Document {
	doc := New(path, version, text)

	s.mu.Lock()
	s.docs[path] = doc
	callbacks := make([]func(doc *Document), len(s.onOpen))
	copy(callbacks, s.onOpen)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(doc)
	}
	return doc
}

// Change applies incremental edits to an open document. Unknown paths are
// ignored.
func (s *Store) Change(path string, version int32, changes []Change) {
	s.mu.RLock()
	doc := s.docs[path]
	s.mu.RUnlock()

	if doc != nil {
		doc.Apply(version, changes)
	}
}

// Close removes a document and fires the close callbacks.
func (s *Store) Close(path string) {
	s.mu.Lock()
	delete(s.docs, path)
	callbacks := make([]func(path string), len(s.onClose))
	copy(callbacks, s.onClose)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(path)
	}
}
