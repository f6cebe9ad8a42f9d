// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the batch conversion of German lute tablature MEI
// files into French and Italian tablature.
//
// Each discovered file is processed to completion before the next one:
// *GLT.mei sources are parsed once, transformed for every target on an
// independent copy, written to FLT/ and ILT/, and copied to GLT/; *CMN.mei
// companions are copied to CMN/; any other .mei file is skipped. A failing
// file is reported and the batch moves on.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/mei"
	"github.com/pdiddy/lutetab/internal/tablature"
	"github.com/pdiddy/lutetab/pkg/types"
)

const (
	// companionDir receives *CMN.mei files unchanged.
	companionDir = "CMN"
	// lockFile guards an output directory against concurrent batches.
	lockFile = ".lutetab.lock"
)

// ErrLocked is returned when another batch holds the output directory.
var ErrLocked = errors.New("output directory is locked by another run")

// errCollision marks two sources that map to the same output file.
var errCollision = errors.New("output name already produced by another source")

// Ledger records conversion outcomes. *ledger.Store implements it.
type Ledger interface {
	BeginRun(ctx context.Context, sourceDir, outputDir string) (string, error)
	Record(ctx context.Context, rec types.ConversionRecord) error
	LastSuccess(ctx context.Context, sourcePath, sha string, targets []string) (bool, error)
	FinishRun(ctx context.Context, runID string, counts types.RunCounts) error
}

// Failure describes one file that could not be processed.
type Failure struct {
	Path  string
	Class types.ErrorClass
	Err   error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	types.RunCounts
	RunID    string
	Failures []Failure
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Pipeline converts every eligible file under a source directory.
type Pipeline struct {
	cfg    types.ConversionConfig
	ledger Ledger
	log    *zap.Logger
	w      io.Writer

	// produced maps output paths written in this run to their source.
	produced map[string]string
}

// New returns a pipeline. ledger may be nil; status lines go to w.
func New(cfg types.ConversionConfig, ledger Ledger, log *zap.Logger, w io.Writer) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, ledger: ledger, log: log, w: w}
}

// OutputDirs lists the folders created under the output root.
func OutputDirs() []string {
	dirs := []string{tablature.German.Abbr()}
	for _, t := range tablature.Targets() {
		dirs = append(dirs, t.Abbr())
	}
	return append(dirs, companionDir)
}

// OutputPath returns where the conversion of source for target is written.
func (p *Pipeline) OutputPath(source string, target tablature.Convention) string {
	return filepath.Join(p.cfg.OutputDir, target.Abbr(), tablature.OutputName(source, target))
}

// Run discovers and processes all candidates. Per-file failures are counted
// in the result, never returned; the error is reserved for failures that
// prevent the batch from running at all and for context cancellation.
func (p *Pipeline) Run(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(filepath.Join(p.cfg.OutputDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("locking output directory: %w", err)
	}
	if !locked {
		return result, fmt.Errorf("%w: %s", ErrLocked, p.cfg.OutputDir)
	}
	defer lock.Unlock()

	for _, dir := range OutputDirs() {
		if err := os.MkdirAll(filepath.Join(p.cfg.OutputDir, dir), 0o755); err != nil {
			return result, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	candidates, err := Discover(p.cfg.SourceDir, p.cfg.OutputDir, p.cfg.FolderPrefix)
	if err != nil {
		return result, err
	}
	p.log.Info("discovered files",
		zap.String("source_dir", p.cfg.SourceDir),
		zap.Int("count", len(candidates)))

	if p.ledger != nil {
		id, err := p.ledger.BeginRun(ctx, p.cfg.SourceDir, p.cfg.OutputDir)
		if err != nil {
			return result, err
		}
		result.RunID = id
	}

	p.produced = make(map[string]string)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			p.finish(ctx, &result)
			return result, err
		}
		p.process(ctx, c, &result)
	}

	fmt.Fprintf(p.w, "\nBatch summary: %d converted, %d copied, %d skipped, %d unchanged, %d failed (total: %d)\n",
		result.Converted, result.Copied, result.Skipped, result.Unchanged, result.Failed, result.Total())
	p.finish(ctx, &result)
	return result, nil
}

func (p *Pipeline) finish(ctx context.Context, result *BatchResult) {
	if p.ledger == nil || result.RunID == "" {
		return
	}
	// The run row is closed even when ctx was cancelled.
	if err := p.ledger.FinishRun(context.WithoutCancel(ctx), result.RunID, result.RunCounts); err != nil {
		p.log.Warn("could not close ledger run", zap.String("run_id", result.RunID), zap.Error(err))
	}
}

func (p *Pipeline) process(ctx context.Context, c Candidate, result *BatchResult) {
	var (
		status types.FileStatus
		err    error
	)
	switch c.Kind {
	case KindSource:
		status, err = p.ConvertFile(ctx, result.RunID, c.Path)
	case KindCompanion:
		status, err = p.copyCompanion(c.Path)
	default:
		status = types.StatusSkipped
	}

	switch status {
	case types.StatusConverted:
		fmt.Fprintf(p.w, "converted: %s\n", c.Rel)
		result.Converted++
	case types.StatusCopied:
		fmt.Fprintf(p.w, "copied:    %s\n", c.Rel)
		result.Copied++
	case types.StatusUnchanged:
		fmt.Fprintf(p.w, "unchanged: %s\n", c.Rel)
		result.Unchanged++
	case types.StatusSkipped:
		fmt.Fprintf(p.w, "skipped:   %s (not a GLT file)\n", c.Rel)
		result.Skipped++
	default:
		class := ClassifyError(err)
		fmt.Fprintf(p.w, "failed:    %s (%s: %v)\n", c.Rel, class, err)
		p.log.Warn("file failed", zap.String("path", c.Path), zap.String("class", string(class)), zap.Error(err))
		result.Failed++
		result.Failures = append(result.Failures, Failure{Path: c.Path, Class: class, Err: err})
	}
}

// ConvertFile converts one *GLT.mei source for every target and copies the
// original into GLT/ once all targets succeed. A file without the German
// suffix is skipped without error. A target that fails leaves no output
// file; targets already written for the same source are kept.
func (p *Pipeline) ConvertFile(ctx context.Context, runID, path string) (types.FileStatus, error) {
	if !tablature.IsSource(path) {
		return types.StatusSkipped, nil
	}

	sum, err := fileSHA256(path)
	if err != nil {
		return types.StatusFailed, &mei.IOError{Op: "read", Path: path, Err: err}
	}

	if p.unchanged(ctx, path, sum) {
		return types.StatusUnchanged, nil
	}

	doc, err := mei.Load(path)
	if err != nil {
		for _, target := range tablature.Targets() {
			p.record(ctx, p.newRecord(runID, path, sum, target), err)
		}
		return types.StatusFailed, err
	}

	var firstErr error
	for _, target := range tablature.Targets() {
		rec := p.newRecord(runID, path, sum, target)
		err := p.convertTarget(doc, path, target, rec.OutputPath)
		p.record(ctx, rec, err)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return types.StatusFailed, firstErr
	}

	dst := filepath.Join(p.cfg.OutputDir, tablature.German.Abbr(), filepath.Base(path))
	if err := p.claim(dst, path); err != nil {
		return types.StatusFailed, err
	}
	if err := copyFile(path, dst); err != nil {
		return types.StatusFailed, err
	}
	return types.StatusConverted, nil
}

func (p *Pipeline) convertTarget(doc *etree.Document, source string, target tablature.Convention, dst string) error {
	if err := p.claim(dst, source); err != nil {
		return err
	}

	out, stats, err := tablature.TransformWithStats(doc, target)
	if err != nil {
		return err
	}
	p.log.Debug("transformed",
		zap.String("source", source),
		zap.String("target", target.Abbr()),
		zap.Int("rests_removed", stats.RestsRemoved),
		zap.Int("markers_added", stats.MarkersAdded),
		zap.Int("tab_lines_removed", stats.TabLinesRemoved),
		zap.Bool("title_relabeled", stats.TitleRelabeled))

	return mei.WriteFile(out, dst)
}

func (p *Pipeline) copyCompanion(path string) (types.FileStatus, error) {
	dst := filepath.Join(p.cfg.OutputDir, companionDir, filepath.Base(path))
	if err := p.claim(dst, path); err != nil {
		return types.StatusFailed, err
	}
	if err := copyFile(path, dst); err != nil {
		return types.StatusFailed, err
	}
	return types.StatusCopied, nil
}

// claim reserves dst for source within this run.
func (p *Pipeline) claim(dst, source string) error {
	if p.produced == nil {
		p.produced = make(map[string]string)
	}
	if prev, ok := p.produced[dst]; ok && prev != source {
		return fmt.Errorf("%w: %s (from %s)", errCollision, dst, prev)
	}
	p.produced[dst] = source
	return nil
}

// unchanged reports whether incremental mode can skip path: every output
// exists and the ledger's last conversions used identical content.
func (p *Pipeline) unchanged(ctx context.Context, path, sum string) bool {
	if !p.cfg.Incremental || p.ledger == nil {
		return false
	}

	outputs := []string{filepath.Join(p.cfg.OutputDir, tablature.German.Abbr(), filepath.Base(path))}
	var targets []string
	for _, t := range tablature.Targets() {
		outputs = append(outputs, p.OutputPath(path, t))
		targets = append(targets, t.Abbr())
	}
	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}

	ok, err := p.ledger.LastSuccess(ctx, path, sum, targets)
	if err != nil {
		p.log.Warn("ledger lookup failed", zap.String("path", path), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	// Outputs carry over from the earlier run.
	for _, out := range outputs {
		if err := p.claim(out, path); err != nil {
			return false
		}
	}
	return true
}

func (p *Pipeline) newRecord(runID, path, sum string, target tablature.Convention) types.ConversionRecord {
	return types.ConversionRecord{
		RunID:        runID,
		SourcePath:   path,
		SourceSHA256: sum,
		Target:       target.Abbr(),
		OutputPath:   p.OutputPath(path, target),
	}
}

func (p *Pipeline) record(ctx context.Context, rec types.ConversionRecord, err error) {
	if p.ledger == nil || rec.RunID == "" {
		return
	}
	rec.Status = types.StatusConverted
	if err != nil {
		rec.Status = types.StatusFailed
		rec.ErrorClass = ClassifyError(err)
		rec.Error = err.Error()
		rec.OutputPath = ""
	}
	if lerr := p.ledger.Record(ctx, rec); lerr != nil {
		p.log.Warn("could not record conversion", zap.String("path", rec.SourcePath), zap.Error(lerr))
	}
}
