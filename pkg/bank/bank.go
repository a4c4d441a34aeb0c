// Package bank loads declarative spec banks, YAML or JSON files
// describing groups and examples over registered Go subjects, and
// turns them into spec trees.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidBank wraps every bank loading and building error.
var ErrInvalidBank = errors.New("invalid spec bank")

// Bank holds the bank files loaded so far, in load order.
type Bank struct {
	mu      sync.RWMutex
	files   []*BankFile
	names   map[string]string
	sources []string
}

// New creates a new empty Bank.
func New() *Bank {
	return &Bank{names: make(map[string]string)}
}

// Decode parses a bank document. The format is chosen by the
// extension of name: .json is JSON, anything else YAML.
func Decode(name string, data []byte) (*BankFile, error) {
	var file BankFile
	var err error
	if strings.EqualFold(filepath.Ext(name), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidBank, name, err)
	}
	return &file, nil
}

// LoadFile reads, decodes and validates the bank at path.
func (b *Bank) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bank file %s: %w", path, err)
	}

	file, err := Decode(path, data)
	if err != nil {
		return err
	}
	if errs := validateBank(file); len(errs) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrInvalidBank, path, joinErrors(errs))
	}
	return b.Add(path, file)
}

// Add registers an already decoded bank file loaded from source.
func (b *Bank) Add(source string, file *BankFile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, exists := b.names[file.Name]; exists {
		return fmt.Errorf(
			"%w: bank %q in %s already loaded from %s",
			ErrInvalidBank, file.Name, source, prev,
		)
	}
	b.names[file.Name] = source
	b.files = append(b.files, file)
	b.sources = append(b.sources, source)
	return nil
}

// LoadDir loads every .yaml, .yml and .json file in dir, in name
// order.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read bank directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isBankFile(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Load loads path, a file or a directory.
func (b *Bank) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat bank %s: %w", path, err)
	}
	if info.IsDir() {
		return b.LoadDir(path)
	}
	return b.LoadFile(path)
}

func isBankFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Files returns the loaded bank files in load order.
func (b *Bank) Files() []*BankFile {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*BankFile, len(b.files))
	copy(out, b.files)
	return out
}

// Count returns the number of loaded files.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.files)
}

// Sources returns the list of loaded file paths.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.sources))
	copy(result, b.sources)
	return result
}
