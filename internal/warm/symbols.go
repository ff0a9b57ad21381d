package warm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// LoadSymbolsFile reads symbols from a .txt (one per line, # comments) or
// .json (string array) file, deduplicated and upper-cased.
func LoadSymbolsFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols file %s: %w", path, err)
	}

	var symbols []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &symbols); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".txt":
		symbols = parseSymbolsFromText(string(content))
	default:
		return nil, fmt.Errorf("unsupported symbols file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	seen := make(map[string]bool)
	var unique []string
	for _, s := range symbols {
		s = strings.TrimSpace(strings.ToUpper(s))
		if s != "" && !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("no symbols in %s", path)
	}
	return unique, nil
}

// parseSymbolsFromText parses one symbol per non-empty, non-comment line.
func parseSymbolsFromText(s string) []string {
	lines := strings.Split(s, "\n")
	var symbols []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			symbols = append(symbols, line)
		}
	}
	return symbols
}
