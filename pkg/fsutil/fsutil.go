package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned for unsupported size units.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultPattern matches every name containing a dot.
const DefaultPattern = "*.*"

// Unit selects the scale FileSize reports in.
type Unit string

const (
	KB Unit = "kb"
	MB Unit = "mb"
)

// ListDir returns the entries of dir whose base name matches pattern, relative
// to dir and sorted. With recursive set, subdirectories are walked as well.
// Hidden names are only matched by patterns that start with a dot.
func ListDir(dir, pattern string, recursive bool) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var out []string
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read dir: %w", err)
		}
		for _, e := range entries {
			if matches(pattern, e.Name()) {
				out = append(out, e.Name())
			}
		}
		return out, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() && isHidden(d.Name()) && !isHidden(pattern) {
			return filepath.SkipDir
		}
		if !matches(pattern, d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk dir: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func matches(pattern, name string) bool {
	if isHidden(name) && !isHidden(pattern) {
		return false
	}
	ok, _ := filepath.Match(pattern, name)
	return ok
}

func isHidden(name string) bool { return strings.HasPrefix(name, ".") }

// ParseUnit accepts "kb" or "mb" in any case.
func ParseUnit(raw string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(raw))); u {
	case KB, MB:
		return u, nil
	default:
		return "", fmt.Errorf("%w: unit %q (expected kb or mb)", ErrInvalidArgument, raw)
	}
}

// FileSize formats the size of path as "<path> : <value><KB|MB>", rounded to
// two decimals.
func FileSize(path, unit string) (string, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}

	div := 1024.0
	if u == MB {
		div = 1024 * 1024
	}
	return fmt.Sprintf("%s : %s%s", path, formatSize(float64(info.Size())/div), strings.ToUpper(string(u))), nil
}

// formatSize rounds to two decimals and keeps at least one decimal digit.
func formatSize(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
