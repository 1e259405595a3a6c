package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRingFile = `
endpoints:
  - address: 10.0.0.1:9042
    host_id: 6f1c2a9e-3c1b-4c52-9d7a-1b2f3e4d5c6a
    datacenter: dc1
    rack: r1
    tokens: [10, 40]
  - address: 10.0.0.2:9042
    tokens: [20]
  - address: 10.0.0.3:9042
    tokens: [30]
`

func TestParseRingFile(t *testing.T) {
	tm, err := ParseRingFile([]byte(testRingFile))
	require.NoError(t, err)

	assert.Equal(t, []Token{10, 20, 30, 40}, tm.SortedTokens())

	ep, err := tm.GetEndpoint(40)
	require.NoError(t, err)
	assert.Equal(t, Endpoint("10.0.0.1:9042"), ep)

	id, ok := tm.GetHostID("10.0.0.1:9042")
	require.True(t, ok)
	assert.Equal(t, uuid.MustParse("6f1c2a9e-3c1b-4c52-9d7a-1b2f3e4d5c6a"), id)

	loc, ok := tm.Topology().Location("10.0.0.1:9042")
	require.True(t, ok)
	assert.Equal(t, Location{Datacenter: "dc1", Rack: "r1"}, loc)
}

func TestParseRingFile_Errors(t *testing.T) {
	_, err := ParseRingFile([]byte("endpoints:\n  - tokens: [1]\n"))
	assert.Error(t, err)

	_, err = ParseRingFile([]byte("endpoints:\n  - address: a\n    host_id: not-a-uuid\n"))
	assert.Error(t, err)
}

func TestLoadRingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRingFile), 0o600))

	tm, err := LoadRingFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, tm.Size())

	_, err = LoadRingFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
