package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLedger_NewMonth(t *testing.T) {
	dir := t.TempDir()
	l := NewFileLedger(dir)

	entryID, err := l.Append(context.Background(), pair("5110", "1010", "4.00"))
	require.NoError(t, err)
	assert.Equal(t, "JE-202501-0001", entryID)

	_, err = os.Stat(filepath.Join(dir, "2025", "01", "journal.csv"))
	require.NoError(t, err)

	got, err := l.ReadMonth(2025, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, entryID, p.EntryID)
	}
}

func TestFileLedger_SequentialEntries(t *testing.T) {
	l := NewFileLedger(t.TempDir())
	ctx := context.Background()

	_, err := l.Append(ctx, pair("5110", "1010", "10.00"))
	require.NoError(t, err)
	second, err := l.Append(ctx, pair("5110", "1010", "20.00"))
	require.NoError(t, err)
	assert.Equal(t, "JE-202501-0002", second)

	got, err := l.ReadMonth(2025, 1)
	require.NoError(t, err)
	assert.Len(t, got, 4, "two entries x 2 lines")
}

func TestFileLedger_RejectsUnbalanced(t *testing.T) {
	l := NewFileLedger(t.TempDir())
	lines := pair("5110", "1010", "10.00")
	lines[1].Amount = dec("9.00")

	_, err := l.Append(context.Background(), lines)
	require.Error(t, err)

	got, err := l.ReadMonth(2025, 1)
	require.NoError(t, err)
	assert.Empty(t, got, "nothing written")
}

func TestFileLedger_Empty(t *testing.T) {
	_, err := NewFileLedger(t.TempDir()).Append(context.Background(), nil)
	assert.Error(t, err)
}

func TestFileLedger_ReadMissingMonth(t *testing.T) {
	got, err := NewFileLedger(t.TempDir()).ReadMonth(2030, 6)
	require.NoError(t, err)
	assert.Nil(t, got)
}
