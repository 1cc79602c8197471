package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/domino14/checkers/board"
	"github.com/domino14/checkers/config"
)

// SearchConfig returns a config with small search limits so tests stay quick.
func SearchConfig(maxDepth int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMaxDepth, maxDepth)
	cfg.Set(config.ConfigMaxTimeMs, 60000)
	return cfg
}

// WriteBoardFile writes the sample position to a file in a temporary
// directory and returns its path.
func WriteBoardFile(t testing.TB, pos board.SamplePosition) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.txt")
	if err := os.WriteFile(path, []byte(pos.Text()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
