package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/socialchef/yak/internal/errors"
)

// ParsePatterns splits a comma-separated glob list, trimming entries and
// dropping empty ones.
func ParsePatterns(csv string) []string {
	var patterns []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// Discover resolves patterns relative to dir and returns the matching regular
// files as absolute paths, deduplicated and sorted lexicographically. "**"
// matches any number of directories. No match is not an error, and neither is
// a dir that does not exist.
func Discover(dir string, patterns []string) ([]AudioFile, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to resolve %s", dir), "PATH_RESOLVE_ERROR", err)
	}

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("cannot scan %s", root), "SCAN_DIR_ERROR", err)
	}
	if !info.IsDir() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not a directory", root), "NOT_A_DIRECTORY", "Pass a directory to --path.")
	}

	fsys := os.DirFS(root)
	seen := make(map[string]struct{})

	for _, raw := range patterns {
		pattern, err := normalizePattern(raw)
		if err != nil {
			return nil, err
		}
		if pattern == "" {
			continue
		}

		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid glob pattern %q: %v", raw, err), "INVALID_PATTERN", "Check the --patterns value.")
		}

		for _, m := range matches {
			abs := filepath.Join(root, filepath.FromSlash(m))
			fi, err := os.Stat(abs)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			seen[abs] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]AudioFile, len(paths))
	for i, p := range paths {
		files[i] = AudioFile{Path: p}
	}
	return files, nil
}

// normalizePattern turns a user pattern into the unrooted, slash-separated
// form fs.FS expects.
func normalizePattern(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", nil
	}
	p = filepath.ToSlash(p)
	if strings.HasPrefix(p, "/") || filepath.IsAbs(raw) {
		return "", apperrors.NewValidationError(fmt.Sprintf("pattern %q must be relative to --path", raw), "ABSOLUTE_PATTERN", "Use --path to choose the directory.")
	}
	if !doublestar.ValidatePattern(p) {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid glob pattern %q", raw), "INVALID_PATTERN", "Check the --patterns value.")
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", apperrors.NewValidationError(fmt.Sprintf("pattern %q escapes --path", raw), "PATTERN_ESCAPES_ROOT", "Use --path to choose the directory.")
	}
	return p, nil
}
