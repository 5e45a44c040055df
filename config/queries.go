package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ResolveQueries returns the single search when given, otherwise the
// non-blank lines of inputFile. ErrNoQueries is returned when neither
// yields a query.
func ResolveQueries(search, inputFile string) ([]string, error) {
	if s := strings.TrimSpace(search); s != "" {
		return []string{s}, nil
	}

	f, err := os.Open(inputFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoQueries
		}
		return nil, fmt.Errorf("open input file %q: %w", inputFile, err)
	}
	defer f.Close()

	var queries []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input file %q: %w", inputFile, err)
	}
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	return queries, nil
}
