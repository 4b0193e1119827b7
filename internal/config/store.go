package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// =============================================================================
// BRANDING STORE
// =============================================================================
//
// The store is a flat JSON key-value document:
//
//   {
//     "harga_satuan": 100000,
//     "company_name": "TOKO KAOS KEREN",
//     ...
//   }
//
// On load the document is merged over DefaultBranding, so keys that are
// missing fall back to the built-in value and unknown keys are ignored.
//
// =============================================================================

// BrandingStore persists Branding between runs.
type BrandingStore struct {
	path string
	mu   sync.Mutex
}

// NewBrandingStore creates a store backed by the JSON file at path.
func NewBrandingStore(path string) *BrandingStore {
	return &BrandingStore{path: path}
}

// Path returns the backing file path.
func (s *BrandingStore) Path() string {
	return s.path
}

// newViper returns a viper instance seeded with the built-in defaults.
func (s *BrandingStore) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	for key, value := range DefaultBranding().fields() {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the store merged over the defaults.
//
// RETURNS:
//   - The merged branding. On error this is still usable: it holds the
//     defaults, so callers can report the error as a warning and continue.
//   - An error if the file exists but cannot be read or decoded.
func (s *BrandingStore) Load() (Branding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.newViper()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return DefaultBranding(), nil
	}

	if err := v.ReadInConfig(); err != nil {
		return DefaultBranding(), fmt.Errorf("failed to read branding file %s: %w", s.path, err)
	}

	var b Branding
	if err := v.Unmarshal(&b); err != nil {
		return DefaultBranding(), fmt.Errorf("failed to decode branding file %s: %w", s.path, err)
	}

	return b.WithDefaults(), nil
}

// Save writes every branding field to the store, replacing its contents.
func (s *BrandingStore) Save(b Branding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create branding directory: %w", err)
		}
	}

	v := s.newViper()
	for key, value := range b.fields() {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write branding file %s: %w", s.path, err)
	}

	return nil
}
