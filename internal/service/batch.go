package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"golang.org/x/sync/errgroup"
)

// ControllerFactory builds a fresh session controller for one file.
type ControllerFactory func() *session.Controller

// BatchOptions tunes a batch run.
type BatchOptions struct {
	// Parallel bounds concurrent uploads. Values below 1 mean 1.
	Parallel int
	// OutDir, when set, receives each artifact after a successful upload.
	OutDir string
	// OnResult, when set, is called as each file finishes. Calls may be
	// concurrent.
	OnResult func(BatchResult)
}

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	File      *domain.FileHandle
	Result    processing.ProcessResult
	SavedPath string
	Err       error
}

// BatchProcessor submits many files of the same marksheet type. Every file
// runs through its own controller so each upload keeps single-flight
// semantics.
type BatchProcessor struct {
	newController ControllerFactory
	observer      UseCaseObserver
}

func NewBatchProcessor(factory ControllerFactory, observers ...UseCaseObserver) *BatchProcessor {
	return &BatchProcessor{newController: factory, observer: combineObservers(observers)}
}

// Run processes files and returns one result per file in input order. A
// failing file never stops the others; cancelling ctx skips files that have
// not started yet.
func (b *BatchProcessor) Run(ctx context.Context, t domain.MarksheetType, files []*domain.FileHandle, opts BatchOptions) []BatchResult {
	fields := map[string]any{"type": string(t), "files": len(files)}
	done := track(ctx, b.observer, "process-batch", fields)

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	results := make([]BatchResult, len(files))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{File: f, Err: err}
			} else {
				results[i] = b.processOne(ctx, t, f, opts.OutDir)
			}
			if opts.OnResult != nil {
				opts.OnResult(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	fields["failed"] = failed
	var err error
	if failed > 0 {
		err = fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	done(err)
	return results
}

func (b *BatchProcessor) processOne(ctx context.Context, t domain.MarksheetType, f *domain.FileHandle, outDir string) BatchResult {
	res := BatchResult{File: f}
	c := b.newController()
	defer c.Wait()

	if res.Err = c.SelectType(ctx, t); res.Err != nil {
		return res
	}
	if res.Err = c.SelectFile(f); res.Err != nil {
		return res
	}
	if res.Result, res.Err = c.Submit(ctx); res.Err != nil {
		return res
	}
	if outDir == "" {
		return res
	}
	res.SavedPath, res.Err = SaveArtifact(ctx, c, outDir, ArtifactName(res.Result.DownloadURL, f.Name))
	return res
}

// ArtifactName derives a local filename for a download reference, falling
// back to the source file's name with an .xlsx extension.
func ArtifactName(ref, sourceName string) string {
	name := path.Base(strings.SplitN(ref, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = strings.TrimSuffix(sourceName, filepath.Ext(sourceName)) + ".xlsx"
	}
	return name
}

// SaveArtifact downloads the controller's artifact into dir/name.
func SaveArtifact(ctx context.Context, c *session.Controller, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	target := filepath.Join(dir, name)
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := c.Download(ctx, out); err != nil {
		out.Close()
		os.Remove(target)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}
