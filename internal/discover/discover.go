// Package discover walks a legacy suite tree and classifies which files are
// translatable tests. Classification is heuristic: a file counts as a
// legacy test when its content carries one of the framework markers.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"tsmigrate/internal/extract"
)

// markers identify a legacy framework test source.
var markers = []string{
	"ts::Test",
	"TServerTestInstance",
	"ts::TestFactory",
}

// Test summarizes one discovered legacy test.
type Test struct {
	CPPFile   string
	XMLFile   string
	SuiteName string
	TestName  string
	ClassName string

	Variations int
	Parameters int

	HasTcore          bool
	HasRegisterAccess bool
	HasMemoryOps      bool
}

// Features renders the capability flags for listings and reports.
func (t Test) Features() string {
	var f []string
	if t.HasTcore {
		f = append(f, "TCore")
	}
	if t.HasRegisterAccess {
		f = append(f, "Reg")
	}
	if t.HasMemoryOps {
		f = append(f, "Mem")
	}
	return strings.Join(f, ", ")
}

type Scanner struct {
	log          *zap.Logger
	engine       *extract.Engine
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func NewScanner(log *zap.Logger, excludeDirs, excludeFiles []string) (*Scanner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	compile := func(patterns []string) ([]glob.Glob, error) {
		out := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}
	dirs, err := compile(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compile(excludeFiles)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		log:          log,
		engine:       extract.New(log),
		excludeDirs:  dirs,
		excludeFiles: files,
	}, nil
}

// IsLegacyTest reports whether the content carries a framework marker.
func IsLegacyTest(content []byte) bool {
	text := string(content)
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Discover walks root for legacy test sources. A file that cannot be read
// or analyzed is logged and skipped; it never aborts the walk.
func (s *Scanner) Discover(root string) ([]Test, error) {
	var tests []Test
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if s.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".cpp") || s.excludedFile(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !IsLegacyTest(content) {
			return nil
		}
		if t, ok := s.analyze(path, content); ok {
			tests = append(tests, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tests, nil
}

// Analyze classifies a single known file, for single-file invocations.
func (s *Scanner) Analyze(path string) (Test, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("could not read test", zap.String("path", path), zap.Error(err))
		return Test{}, false
	}
	if !IsLegacyTest(content) {
		return Test{}, false
	}
	return s.analyze(path, content)
}

func (s *Scanner) analyze(path string, content []byte) (Test, bool) {
	res, err := s.engine.ExtractFile(path, "")
	if err != nil {
		s.log.Warn("could not analyze test", zap.String("path", path), zap.Error(err))
		return Test{}, false
	}
	sp := res.Spec

	text := string(content)
	testName := sp.TestName
	if testName == "" {
		testName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return Test{
		CPPFile:           path,
		XMLFile:           sp.SourceXML,
		SuiteName:         sp.SuiteID,
		TestName:          testName,
		ClassName:         sp.ClassName,
		Variations:        len(sp.Variations),
		Parameters:        len(sp.Parameters),
		HasTcore:          strings.Contains(text, "TcoreInterface") || strings.Contains(text, "TCORE_NAME"),
		HasRegisterAccess: strings.Contains(text, "RegRead") || strings.Contains(text, "RegWrite"),
		HasMemoryOps:      strings.Contains(text, "palloc") || strings.Contains(text, "pfree"),
	}, true
}

func (s *Scanner) excludedDir(name string) bool {
	for _, g := range s.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Scanner) excludedFile(name string) bool {
	for _, g := range s.excludeFiles {
		if g.Match(name) {
			return true
		}
	}
	return false
}
