package tus

import (
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlob expands a doublestar glob pattern (e.g. "**/*.mp4") rooted at
// dir into a sorted list of regular file paths, the same pattern
// keytemplate.Model.evaluateGlobPatterns uses to turn a cache-key pattern
// into a concrete file list. It does not start any uploads itself: the
// core has no scheduler (§1 Non-goals), so callers loop over the result
// and create one Upload per path themselves.
func ExpandGlob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, &ConfigurationError{Reason: "invalid glob pattern: " + err.Error()}
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(dir + "/" + m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, dir+"/"+m)
	}
	return files, nil
}
