package logger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/logger"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries_JoinedBranches(t *testing.T) {
	err := zerr.Wrap(errors.Join(domain.ErrIO, errors.New("rename failed")), "a.tskb")

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.tskb", logger.EntryMessage(entries[0]))
	assert.Equal(t, "i/o failure", logger.EntryMessage(entries[1]))
	assert.Equal(t, "rename failed", logger.EntryMessage(entries[2]))
}

func TestCollectErrorEntries_StdlibWrapStopsChain(t *testing.T) {
	inner := errors.New("connection refused")
	err := fmt.Errorf("outer: %w", inner)

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 1)
	assert.Equal(t, "outer: connection refused", logger.EntryMessage(entries[0]))
}

func TestCollectErrorEntries_ParseError(t *testing.T) {
	perr := domain.NewParseError("a.tsk", domain.Diagnostics{{Pos: domain.Position{Line: 2, Column: 5}, Message: "expected value"}})
	err := zerr.Wrap(perr, "failed to compile")

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 2)
	assert.Contains(t, logger.EntryMessage(entries[1]), "2:5: error: expected value")

	formatted := logger.FormatErrorEntries(entries)
	assert.Contains(t, formatted, "Error: failed to compile")
	assert.Contains(t, formatted, "Caused by:")
	assert.Contains(t, formatted, "      2:5: error: expected value")
}

func TestCollectErrorEntries_Metadata(t *testing.T) {
	err := zerr.With(zerr.New("bad header"), "offset", 4)

	entries := logger.CollectErrorEntries(err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"offset": 4}, logger.EntryMetadata(entries[0]))
}
