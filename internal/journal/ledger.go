package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cleared-dev/ledgerengine/internal/id"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

// FileLedger commits entries to <root>/YYYY/MM/journal.csv.
type FileLedger struct {
	root string
	mu   sync.Mutex
}

// NewFileLedger creates a FileLedger rooted at root.
func NewFileLedger(root string) *FileLedger {
	return &FileLedger{root: root}
}

// Append validates the postings as one entry, assigns the month's next entry
// ID and appends them to the month's journal. Returns the entry ID.
func (l *FileLedger) Append(_ context.Context, postings []model.Posting) (string, error) {
	if len(postings) == 0 {
		return "", errors.New("appending entry: no postings")
	}
	if err := CheckBalanced(postings); err != nil {
		return "", fmt.Errorf("appending entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := postings[0].Date
	year, month := date.Year(), int(date.Month())

	existing, err := l.ReadMonth(year, month)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(existing))
	for i, p := range existing {
		ids[i] = p.EntryID
	}
	entryID := id.FormatEntryID(year, month, id.NextSeq(ids, year, month))

	lines := make([]model.Posting, len(postings))
	for i, p := range postings {
		p.EntryID = entryID
		lines[i] = p
	}

	journalPath := l.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return "", fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendPostings(f, lines); err != nil {
		return "", fmt.Errorf("appending postings: %w", err)
	}
	return entryID, nil
}

// ReadMonth reads all postings for a given year/month.
func (l *FileLedger) ReadMonth(year, month int) ([]model.Posting, error) {
	path := l.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	postings, err := ReadPostings(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return postings, nil
}

func (l *FileLedger) monthPath(year, month int) string {
	return filepath.Join(l.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
