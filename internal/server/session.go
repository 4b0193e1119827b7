package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/order-invoicer/internal/converter"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// =============================================================================
// SESSION STORE
// =============================================================================
//
// Uploads and generated batches live in memory only. Every entry expires
// after the configured TTL counted from its last access; Sweep drops
// expired entries and lookups treat them as missing.
//
// =============================================================================

// Upload is a parsed order file waiting for row selection.
type Upload struct {
	ID         string
	Table      *types.Table
	lastAccess time.Time
}

// Batch is the result of one generation request.
type Batch struct {
	ID         string
	UploadID   string
	Result     *converter.BatchResult
	Files      *converter.MemorySink
	CreatedAt  time.Time
	lastAccess time.Time
}

// Store holds uploads and batches keyed by uuid.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	uploads map[string]*Upload
	batches map[string]*Batch
}

// NewStore creates an empty store. A ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		now:     time.Now,
		uploads: make(map[string]*Upload),
		batches: make(map[string]*Batch),
	}
}

// AddUpload stores table under a fresh id.
func (s *Store) AddUpload(table *types.Table) *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &Upload{ID: uuid.NewString(), Table: table, lastAccess: s.now()}
	s.uploads[u.ID] = u
	return u
}

// Upload returns the upload with the given id and refreshes its expiry.
func (s *Store) Upload(id string) (*Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.uploads[id]
	if !ok || s.expired(u.lastAccess) {
		return nil, false
	}
	u.lastAccess = s.now()
	return u, true
}

// AddBatch stores a generation result under a fresh id.
func (s *Store) AddBatch(uploadID string, result *converter.BatchResult, files *converter.MemorySink) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b := &Batch{
		ID:         uuid.NewString(),
		UploadID:   uploadID,
		Result:     result,
		Files:      files,
		CreatedAt:  now,
		lastAccess: now,
	}
	s.batches[b.ID] = b
	return b
}

// Batch returns the batch with the given id and refreshes its expiry.
func (s *Store) Batch(id string) (*Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok || s.expired(b.lastAccess) {
		return nil, false
	}
	b.lastAccess = s.now()
	return b, true
}

// DeleteBatch removes a batch and reports whether it existed.
func (s *Store) DeleteBatch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.batches[id]
	delete(s.batches, id)
	return ok
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, u := range s.uploads {
		if s.expired(u.lastAccess) {
			delete(s.uploads, id)
			dropped++
		}
	}
	for id, b := range s.batches {
		if s.expired(b.lastAccess) {
			delete(s.batches, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of uploads and batches held.
func (s *Store) Len() (uploads, batches int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.uploads), len(s.batches)
}

// expired must be called with s.mu held.
func (s *Store) expired(lastAccess time.Time) bool {
	return s.ttl > 0 && s.now().Sub(lastAccess) > s.ttl
}
