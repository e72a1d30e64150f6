package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source file names inside the catalog data directory.
const (
	CategoriesFile = "categories.jsonl"
	OptionsFile    = "options.jsonl"
	RulesFile      = "rules.jsonl"
	SettingsFile   = "settings.jsonl"
)

// maxRecordSize bounds a single JSONL line. Rules with long accepted-value
// lists are the largest records.
const maxRecordSize = 1 << 20

// readJSONL decodes one T per non-blank line of r.
// name is used to prefix errors with "file:line".
func readJSONL[T any](r io.Reader, name string) ([]T, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	var items []T
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, &DataError{
				Problems: []string{fmt.Sprintf("invalid record in %s:%d: %v", name, line, err)},
				Err:      err,
			}
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, &DataError{
			Problems: []string{fmt.Sprintf("failed to read %s: %v", name, err)},
			Err:      err,
		}
	}

	return items, nil
}

// loadJSONLFile opens path and decodes it with readJSONL.
func loadJSONLFile[T any](path string) ([]T, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DataError{
				Problems: []string{fmt.Sprintf("%s file not found: %s", name, path)},
				Err:      err,
			}
		}
		return nil, &DataError{
			Problems: []string{fmt.Sprintf("failed to open %s: %v", path, err)},
			Err:      err,
		}
	}
	defer f.Close()

	return readJSONL[T](f, name)
}

// Collections groups the four raw entity collections of a catalog.
type Collections struct {
	Categories []Category
	Options    []Option
	Rules      []Rule
	Settings   []Setting
}

// ReadDir loads the four JSONL files from dir.
// Any missing file or malformed record is returned as a *DataError.
func ReadDir(dir string) (*Collections, error) {
	var (
		c   Collections
		err error
	)

	if c.Categories, err = loadJSONLFile[Category](filepath.Join(dir, CategoriesFile)); err != nil {
		return nil, err
	}
	if c.Options, err = loadJSONLFile[Option](filepath.Join(dir, OptionsFile)); err != nil {
		return nil, err
	}
	if c.Rules, err = loadJSONLFile[Rule](filepath.Join(dir, RulesFile)); err != nil {
		return nil, err
	}
	if c.Settings, err = loadJSONLFile[Setting](filepath.Join(dir, SettingsFile)); err != nil {
		return nil, err
	}

	return &c, nil
}
