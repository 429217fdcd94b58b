package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesTaggedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query_log.txt")
	lg := New(Config{File: path, MaxSizeMB: 1, MaxBackups: 3})

	lg.Infof("QUERY", "time: %.3f ms", 1.234)
	lg.Warnf("QUERY", "slow query detected")
	lg.Errorf("UDF", "store round trip failed")
	require.NoError(t, lg.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "INFO  | [QUERY] time: 1.234 ms")
	assert.Contains(t, content, "WARN  | [QUERY] slow query detected")
	assert.Contains(t, content, "ERROR | [UDF] store round trip failed")
}

func TestNewWithoutFileDiscards(t *testing.T) {
	lg := New(Config{})
	lg.Infof("QUERY", "dropped")
	assert.NoError(t, lg.Close())
}

func TestDiscard(t *testing.T) {
	lg := Discard()
	lg.Infof("QUERY", "dropped")
	assert.NoError(t, lg.Close())
}
