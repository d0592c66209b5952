package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// suiteCategories are the suite subtrees an IP block can live under.
var suiteCategories = []string{"gpu", "cpu", "nbridge"}

// IPSuite describes one IP block suite directory in the legacy tree.
type IPSuite struct {
	Name      string
	Category  string
	SuitePath string // suite/<category>/<name>, relative to the root
	FullPath  string
	TestFiles int
	HasCMake  bool
}

// DiscoverIPBlocks scans the suite/{gpu,cpu,nbridge} subtrees of the legacy
// source root and lists the IP block directories found there, sorted by
// name. A directory counts when it holds at least one test source or a
// CMakeLists.txt; suite subtrees that do not exist are skipped.
func DiscoverIPBlocks(root string) ([]IPSuite, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("legacy source root: %w", err)
	}
	var suites []IPSuite
	for _, category := range suiteCategories {
		base := filepath.Join(root, "suite", category)
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			full := filepath.Join(base, e.Name())
			count := countTestSources(full)
			_, err := os.Stat(filepath.Join(full, "CMakeLists.txt"))
			hasCMake := err == nil
			if count == 0 && !hasCMake {
				continue
			}
			suites = append(suites, IPSuite{
				Name:      e.Name(),
				Category:  category,
				SuitePath: filepath.Join("suite", category, e.Name()),
				FullPath:  full,
				TestFiles: count,
				HasCMake:  hasCMake,
			})
		}
	}
	sort.Slice(suites, func(i, j int) bool { return suites[i].Name < suites[j].Name })
	return suites, nil
}

// countTestSources counts .cpp files with "test" in the name, recursively.
func countTestSources(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".cpp") && strings.Contains(name, "test") {
			count++
		}
		return nil
	})
	return count
}
