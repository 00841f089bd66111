// Package id formats journal entry and loan identifiers.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const entryPrefix = "JE-"

// FormatEntryID returns an entry ID like "JE-202501-0001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%s%04d%02d-%04d", entryPrefix, year, month, seq)
}

// ParseEntryID parses "JE-202501-0001" into year, month, seq.
func ParseEntryID(s string) (year, month, seq int, err error) {
	rest, ok := strings.CutPrefix(s, entryPrefix)
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid entry ID %q: missing %s prefix", s, entryPrefix)
	}
	period, seqPart, ok := strings.Cut(rest, "-")
	if !ok || len(period) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", s)
	}

	year, err = strconv.Atoi(period[:4])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", s, err)
	}
	month, err = strconv.Atoi(period[4:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q", s)
	}
	seq, err = strconv.Atoi(seqPart)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", s, err)
	}
	return year, month, seq, nil
}

// NextSeq returns one more than the highest sequence among ids for the given
// period. Malformed ids and other periods are ignored.
func NextSeq(ids []string, year, month int) int {
	maxSeq := 0
	for _, s := range ids {
		y, m, seq, err := ParseEntryID(s)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

// NewLoanID returns a random loan identifier.
func NewLoanID() string {
	return "LN-" + uuid.NewString()
}
