package catalog

import (
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store. It is safe for concurrent use and serves
// both as the test backend and as a dry-run registration target. Unlike the
// registry it matches key paths case-sensitively.
type MemStore struct {
	mu   sync.RWMutex
	root *memNode
}

type memNode struct {
	children map[string]*memNode
	values   map[string]string
}

func newMemNode() *memNode {
	return &memNode{
		children: make(map[string]*memNode),
		values:   make(map[string]string),
	}
}

// NewMemStore creates an empty in-memory catalog.
func NewMemStore() *MemStore {
	return &MemStore{root: newMemNode()}
}

// Open returns a handle to an existing key, or ErrNotExist.
func (s *MemStore) Open(path string) (Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := s.root
	for _, name := range splitPath(path) {
		child, ok := node.children[name]
		if !ok {
			return nil, ErrNotExist
		}
		node = child
	}
	return &memKey{store: s, node: node}, nil
}

// Create returns a handle to the key at path, creating missing parents along
// the way.
func (s *MemStore) Create(path string) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.root
	for _, name := range splitPath(path) {
		child, ok := node.children[name]
		if !ok {
			child = newMemNode()
			node.children[name] = child
		}
		node = child
	}
	return &memKey{store: s, node: node}, nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, Separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// memKey points into the store's tree. Keys are never deleted, so the node
// pointer stays valid for the life of the store.
type memKey struct {
	store *MemStore
	node  *memNode
}

func (k *memKey) Subkeys() ([]string, error) {
	k.store.mu.RLock()
	defer k.store.mu.RUnlock()

	names := make([]string, 0, len(k.node.children))
	for name := range k.node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (k *memKey) Value(name string) (string, error) {
	k.store.mu.RLock()
	defer k.store.mu.RUnlock()

	value, ok := k.node.values[name]
	if !ok {
		return "", ErrNotExist
	}
	return value, nil
}

func (k *memKey) SetValue(name, value string) error {
	k.store.mu.Lock()
	defer k.store.mu.Unlock()

	k.node.values[name] = value
	return nil
}

func (k *memKey) Close() error { return nil }
