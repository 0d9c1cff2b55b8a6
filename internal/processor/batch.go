package processor

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"destaple/internal/detect"
	"destaple/internal/source"
	"destaple/internal/system"
	"destaple/internal/zone"
)

// BatchOptions configures a document run.
type BatchOptions struct {
	OutputDir  string
	DPI        int
	Workers    int // 0 = size from system resources
	Protection bool
	Detector   detect.Detector // nil disables detection
}

// RunBatch renders, processes and writes every page of a source.
//
// Pages are independent and processed in parallel; each worker takes
// its own store snapshot so broadcast zones are not shared by
// reference across goroutines. Detection runs at most once per page
// and its absence is never fatal.
func RunBatch(ctx context.Context, src source.Source, store *zone.Store, proc *Processor, opts BatchOptions) error {
	pageCount := src.PageCount()
	if pageCount == 0 {
		return fmt.Errorf("source has no pages")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = system.OptimalWorkers(pageCount)
	}
	if workers > pageCount {
		workers = pageCount
	}
	log.Printf("[*] Processing %d pages with %d workers at %d DPI", pageCount, workers, opts.DPI)

	detectorUp := opts.Protection && opts.Detector != nil && opts.Detector.IsAvailable()
	if opts.Protection && !detectorUp {
		log.Printf("[!] Detector unavailable, continuing without protection")
	}
	cache := detect.NewCache()

	base := store.Snapshot()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < pageCount; i++ {
		pageIndex := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.RenderPage(pageIndex, opts.DPI)
			if err != nil {
				return fmt.Errorf("render page %d: %w", pageIndex, err)
			}
			rgba := ToRGBA(img)

			var regions []detect.ProtectedRegion
			if detectorUp {
				if cached, ok := cache.Get(pageIndex); ok {
					regions = cached
				} else {
					regions, err = opts.Detector.Detect(rgba)
					if err != nil {
						// Fail soft: an undetected page is processed
						// unprotected rather than dropped.
						log.Printf("[!] Detection failed on page %d: %v", pageIndex, err)
						regions = nil
					}
					cache.Put(pageIndex, regions)
				}
			}

			snap := base.Snapshot()
			out, err := proc.Process(rgba, pageIndex, snap, opts.Protection, regions)
			if err != nil {
				return fmt.Errorf("process page %d: %w", pageIndex, err)
			}

			path := filepath.Join(opts.OutputDir, fmt.Sprintf("page_%04d.png", pageIndex))
			if err := writePNG(path, out); err != nil {
				return fmt.Errorf("write page %d: %w", pageIndex, err)
			}
			log.Printf("[>] Ready: %d/%d", pageIndex+1, pageCount)
			return nil
		})
	}
	return g.Wait()
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
