// Package batch runs the extract/generate pipeline over many legacy tests.
// Each test is an isolated unit of work: it reads its own inputs, writes
// only to its own output subdirectory, and records its own failure. One
// unit's failure never halts or corrupts a sibling's outcome.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tsmigrate/internal/discover"
	"tsmigrate/internal/extract"
	"tsmigrate/internal/generate"
	"tsmigrate/internal/guide"
	"tsmigrate/internal/history"
	"tsmigrate/internal/mapping"
	"tsmigrate/internal/observability"
)

// Result records the outcome of one unit of work.
type Result struct {
	CPPFile      string
	Success      bool
	SpecFile     string
	SkeletonFile string
	GuideFile    string
	NeedsReview  []int
	Error        string
}

// Options configure a processor.
type Options struct {
	OutputDir string
	Workers   int
	Guide     bool

	// ReferenceDir, when set, is searched for an existing target-framework
	// test matching the legacy class name; a hit is embedded in the guide.
	ReferenceDir string

	// Store, when non-nil, receives one run record per Run call.
	Store *history.Store
}

type Processor struct {
	log       *zap.Logger
	extractor *extract.Engine
	generator *generate.Engine
	guide     *guide.Builder
	opts      Options
}

func NewProcessor(log *zap.Logger, table *mapping.Table, opts Options) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "tng_output"
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Processor{
		log:       log,
		extractor: extract.New(log),
		generator: generate.New(table),
		guide:     guide.New(table),
		opts:      opts,
	}
}

// TranslateOne runs the full pipeline for a single legacy test. All
// failures are captured in the Result, never returned.
func (p *Processor) TranslateOne(t discover.Test) Result {
	result := Result{CPPFile: t.CPPFile}

	base := strings.TrimSuffix(filepath.Base(t.CPPFile), filepath.Ext(t.CPPFile))
	outDir := filepath.Join(p.opts.OutputDir, base)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		result.Error = fmt.Sprintf("create output directory: %v", err)
		return result
	}

	res, err := p.extractor.ExtractFile(t.CPPFile, t.XMLFile)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.NeedsReview = res.NeedsReview
	observability.VariationsNeedingReviewTotal.Add(float64(len(res.NeedsReview)))

	result.SpecFile = filepath.Join(outDir, base+"_spec.yaml")
	if err := res.Spec.Save(result.SpecFile); err != nil {
		result.Error = err.Error()
		return result
	}

	result.SkeletonFile = filepath.Join(outDir, base+"_tng_test.cpp")
	if err := p.generator.WriteFile(res.Spec, result.SkeletonFile); err != nil {
		result.Error = err.Error()
		return result
	}

	if p.opts.Guide {
		original, err := os.ReadFile(t.CPPFile)
		if err != nil {
			result.Error = fmt.Sprintf("reread source for guide: %v", err)
			return result
		}
		in := guide.Input{Spec: res.Spec, Original: string(original)}
		if refPath := FindReference(p.opts.ReferenceDir, res.Spec.ClassName); refPath != "" {
			if ref, err := os.ReadFile(refPath); err == nil {
				in.Reference = string(ref)
				in.ReferencePath = refPath
			}
		}
		result.GuideFile = filepath.Join(outDir, base+"_guide.md")
		if err := p.guide.WriteFile(in, result.GuideFile); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	result.Success = true
	return result
}

// Run translates the given tests across a fixed-size worker pool. The
// returned slice is index-aligned with tests; unit failures are recorded in
// their Result and never abort siblings.
func (p *Processor) Run(ctx context.Context, root string, tests []discover.Test) []Result {
	start := time.Now()
	results := make([]Result, len(tests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, t := range tests {
		i, t := i, t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{CPPFile: t.CPPFile, Error: err.Error()}
				return nil
			}
			results[i] = p.TranslateOne(t)
			if results[i].Success {
				observability.TestsTranslatedTotal.Inc()
				p.log.Info("translated", zap.String("test", t.TestName))
			} else {
				observability.TestsFailedTotal.Inc()
				p.log.Warn("translation failed",
					zap.String("test", t.TestName),
					zap.String("error", results[i].Error))
			}
			return nil
		})
	}
	_ = g.Wait()
	observability.BatchDuration.Observe(time.Since(start).Seconds())

	p.record(root, start, results)
	return results
}

func (p *Processor) record(root string, start time.Time, results []Result) {
	if p.opts.Store == nil {
		return
	}
	run := history.Run{
		ID:       uuid.NewString(),
		Started:  start.UTC(),
		Finished: time.Now().UTC(),
		Root:     root,
		Total:    len(results),
	}
	outcomes := make([]history.Outcome, 0, len(results))
	for _, r := range results {
		if r.Success {
			run.Succeeded++
		} else {
			run.Failed++
		}
		outcomes = append(outcomes, history.Outcome{
			RunID:        run.ID,
			CPPFile:      r.CPPFile,
			Success:      r.Success,
			SpecFile:     r.SpecFile,
			SkeletonFile: r.SkeletonFile,
			GuideFile:    r.GuideFile,
			Error:        r.Error,
		})
	}
	if err := p.opts.Store.RecordRun(run, outcomes); err != nil {
		p.log.Warn("could not record run history", zap.Error(err))
	}
}

// FindReference looks for an existing target-framework test whose file name
// is derived from the legacy class name. Empty when dir is unset or nothing
// matches.
func FindReference(dir, className string) string {
	if dir == "" || className == "" {
		return ""
	}
	want := strings.ToLower(className)
	var found string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || found != "" || d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.HasSuffix(name, ".cpp") && strings.Contains(strings.ReplaceAll(name, "_", ""), want) {
			found = path
		}
		return nil
	})
	return found
}
