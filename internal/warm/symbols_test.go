package warm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSymbolsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSymbolsFileText(t *testing.T) {
	path := writeSymbolsFile(t, "symbols.txt", `# watchlist
aapl
MSFT

  goog
# trailing comment
msft
`)
	symbols, err := LoadSymbolsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, symbols)
}

func TestLoadSymbolsFileJSON(t *testing.T) {
	path := writeSymbolsFile(t, "symbols.json", `["aapl", "MSFT", "aapl", ""]`)
	symbols, err := LoadSymbolsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}

func TestLoadSymbolsFileBadExtension(t *testing.T) {
	path := writeSymbolsFile(t, "symbols.csv", "AAPL\n")
	_, err := LoadSymbolsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".csv")
}

func TestLoadSymbolsFileEmpty(t *testing.T) {
	path := writeSymbolsFile(t, "symbols.txt", "# nothing here\n\n")
	_, err := LoadSymbolsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbols")
}

func TestLoadSymbolsFileMissing(t *testing.T) {
	_, err := LoadSymbolsFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
