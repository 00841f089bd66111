// Package importer reads batches of transaction requests from CSV files.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/ledgerengine/internal/model"
)

// Row is one parsed request and the CSV line it came from.
type Row struct {
	Line    int
	Request model.TransactionRequest
}

// Parser converts a CSV file into transaction requests.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry maps format names to parsers. Names are case-insensitive.
type Registry map[string]Parser

// Register adds p under its format name. A second parser for the same
// format is a programming error and panics.
func (r Registry) Register(p Parser) {
	name := strings.ToLower(p.Format())
	if _, dup := r[name]; dup {
		panic(fmt.Sprintf("importer: format %q registered twice", name))
	}
	r[name] = p
}

// Lookup returns the parser for format.
func (r Registry) Lookup(format string) (Parser, error) {
	if p, ok := r[strings.ToLower(format)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown import format %q (known: %s)", format, strings.Join(r.Formats(), ", "))
}

// Formats returns the registered format names, sorted.
func (r Registry) Formats() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with the requests and statement formats.
func DefaultRegistry() Registry {
	r := Registry{}
	r.Register(&RequestParser{})
	r.Register(&StatementParser{})
	return r
}

// Pending returns the CSV files waiting in <root>/import, sorted by name.
// A missing import directory means nothing is pending.
func Pending(root string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(root, "import", "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing import files: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Archive moves an imported file into the processed/ directory next to it.
func Archive(path string) error {
	dir := filepath.Join(filepath.Dir(path), "processed")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	dst := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	return nil
}
