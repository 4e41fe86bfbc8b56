package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// siteDirNames are the output directory names static site generators commonly use.
var siteDirNames = []string{"site", "public", "dist"}

// SiteDirCandidates lists where to look for a generated static site, most
// specific first: the user's directory, the working directory and the binary's
// directory, each with its common output subdirectories.
func SiteDirCandidates(userDir string) []string {
	var roots []string
	if userDir != "" {
		roots = append(roots, userDir)
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	if execDir, err := GetExecutableDir(); err == nil {
		roots = append(roots, execDir)
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, root := range roots {
		add(root)
		for _, name := range siteDirNames {
			add(filepath.Join(root, name))
		}
	}
	return out
}

// FindFileInPaths returns the first directory in dirs holding filename.
func FindFileInPaths(filename string, dirs []string) (string, error) {
	for _, dir := range dirs {
		if FileExists(filepath.Join(dir, filename)) {
			log.Debugf("Found %s in %s", filename, dir)
			return dir, nil
		}
	}
	return "", fmt.Errorf("%s not found in %d candidate directories", filename, len(dirs))
}

// ResolveSiteDir locates the directory serving filename. An absolute
// filename needs no directory.
func ResolveSiteDir(userDir, filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return "", nil
	}
	return FindFileInPaths(filename, SiteDirCandidates(userDir))
}
