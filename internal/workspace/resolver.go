package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// solutionProjectPattern matches project entries in a .sln file, e.g.
// Project("{FAE04EC0-...}") = "Unit.Tests", "tests\Unit.Tests\Unit.Tests.csproj", "{...}"
var solutionProjectPattern = regexp.MustCompile(`(?m)^Project\("[^"]*"\)\s*=\s*"[^"]*",\s*"([^"]+\.(?:cs|fs|vb)proj)"`)

// Resolver locates project descriptors in a workspace
type Resolver struct {
	skipDirs map[string]bool
}

// NewResolver creates a new Resolver with the given directories to skip
func NewResolver(skipDirs []string) *Resolver {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Resolver{skipDirs: skipMap}
}

// Resolve returns the project descriptor paths for a target, which may be a
// directory to scan, a single project file, or a solution file. Unreadable
// solution entries are skipped rather than failing the whole resolution.
func (r *Resolver) Resolve(target string) ([]string, error) {
	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("target does not exist: %s", target)
	}

	if !info.IsDir() {
		if isProjectFile(target) {
			return []string{target}, nil
		}
		if strings.HasSuffix(target, ".sln") || strings.HasSuffix(target, ".slnx") {
			return r.resolveSolution(target)
		}
		return nil, fmt.Errorf("target is not a project or solution: %s", target)
	}

	// Prefer a solution at the top of the directory so the project set
	// matches what the IDE would load.
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sln") {
			return r.resolveSolution(filepath.Join(target, e.Name()))
		}
	}

	return r.scan(target)
}

// scan walks a directory tree collecting every project descriptor
func (r *Resolver) scan(root string) ([]string, error) {
	var projects []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}
			if r.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if isProjectFile(path) {
			projects = append(projects, path)
		}
		return nil
	})

	return projects, err
}

// resolveSolution extracts project paths from a solution file. Entries that
// point at files which no longer exist are dropped.
func (r *Resolver) resolveSolution(slnPath string) ([]string, error) {
	data, err := os.ReadFile(slnPath)
	if err != nil {
		return nil, fmt.Errorf("error reading solution %s: %w", slnPath, err)
	}

	slnDir := filepath.Dir(slnPath)
	var projects []string
	for _, match := range solutionProjectPattern.FindAllStringSubmatch(string(data), -1) {
		rel := strings.ReplaceAll(match[1], `\`, string(filepath.Separator))
		full := filepath.Join(slnDir, rel)
		if _, err := os.Stat(full); err != nil {
			continue
		}
		projects = append(projects, full)
	}
	return projects, nil
}

func isProjectFile(path string) bool {
	return strings.HasSuffix(path, ".csproj") ||
		strings.HasSuffix(path, ".fsproj") ||
		strings.HasSuffix(path, ".vbproj")
}
