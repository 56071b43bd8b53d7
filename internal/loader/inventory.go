// Package loader reads the operator-maintained static inventory file.
//
// The inventory is a YAML list of {ip, mac, hostname} records maintained
// outside the engine. It is the last-resort data source: consulted only when
// no live source responds. Store keeps the parsed inventory in memory and
// supports atomic reload when the file changes on disk.
package loader

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"lanmap/internal/domain"
)

// Entry is one operator-maintained inventory record.
type Entry struct {
	IP       string     `yaml:"ip"`
	MAC      domain.MAC `yaml:"-"`
	Hostname string     `yaml:"hostname"`
}

// inventoryYAML is the on-disk file structure.
type inventoryYAML struct {
	Version int `yaml:"version"`
	Devices []struct {
		IP       string `yaml:"ip"`
		MAC      string `yaml:"mac"`
		Hostname string `yaml:"hostname"`
	} `yaml:"devices"`
}

// Store holds the parsed static inventory and reloads it on demand. Reload
// swaps the entry set atomically; readers never observe a partial load.
type Store struct {
	path string
	log  *logrus.Entry

	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates a store for the given inventory file. The file is not
// read until Load is called; a missing path yields an empty inventory.
func NewStore(path string, log *logrus.Logger) *Store {
	return &Store{
		path: path,
		log:  log.WithField("component", "inventory"),
	}
}

// Load reads and parses the inventory file, replacing the in-memory entry
// set on success. Records with malformed MACs are skipped and logged, never
// fatal for the load.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	var file inventoryYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse inventory: %w", err)
	}

	entries := make([]Entry, 0, len(file.Devices))
	for _, d := range file.Devices {
		mac, err := domain.NormalizeMAC(d.MAC)
		if err != nil {
			s.log.WithError(err).Warn("skipping inventory record with invalid mac")
			continue
		}
		entries = append(entries, Entry{
			IP:       d.IP,
			MAC:      mac,
			Hostname: d.Hostname,
		})
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.log.WithField("count", len(entries)).Info("inventory loaded")
	return nil
}

// Entries returns the current inventory snapshot. The returned slice must
// not be mutated.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Path returns the inventory file path, empty when none is configured.
func (s *Store) Path() string {
	return s.path
}
