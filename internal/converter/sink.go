package converter

import (
	"sync"

	"github.com/ginjaninja78/order-invoicer/pkg/utils"
)

// =============================================================================
// SINKS
// =============================================================================

// Sink stores generated invoices.
type Sink interface {
	// Put stores data under name and returns where it was stored.
	Put(name string, data []byte) (string, error)
}

// DirSink writes invoices into a directory.
type DirSink struct {
	fm *utils.FileManager
}

// NewDirSink creates the directory if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	fm := utils.NewFileManager(dir)
	if err := fm.EnsureDirectories(); err != nil {
		return nil, err
	}
	return &DirSink{fm: fm}, nil
}

// Put writes the file and returns its path.
func (s *DirSink) Put(name string, data []byte) (string, error) {
	return s.fm.WriteFile(name, data)
}

// MemorySink keeps invoices in memory, in insertion order.
type MemorySink struct {
	mu    sync.RWMutex
	files []utils.NamedFile
	index map[string]int
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{index: make(map[string]int)}
}

// Put stores the file. Storing a name twice replaces the earlier data.
func (s *MemorySink) Put(name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[name]; ok {
		s.files[i].Data = data
		return name, nil
	}
	s.index[name] = len(s.files)
	s.files = append(s.files, utils.NamedFile{Name: name, Data: data})
	return name, nil
}

// Get returns the stored file named name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.files[i].Data, true
}

// Files returns a snapshot of the stored files.
func (s *MemorySink) Files() []utils.NamedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]utils.NamedFile(nil), s.files...)
}

// Len returns the number of stored files.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.files)
}
