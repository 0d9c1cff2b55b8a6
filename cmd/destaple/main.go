package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"destaple/internal/config"
	"destaple/internal/detect"
	"destaple/internal/processor"
	"destaple/internal/source"
	"destaple/internal/zone"
)

func main() {
	defaults := config.Default()

	inputPtr := flag.String("input", "", "PDF file, image file, or directory of scanned images")
	outputPtr := flag.String("output", defaults.OutputDir, "Directory for cleaned page images")
	zonesPtr := flag.String("zones", "", "Zone file (yaml); preset corner/edge zones when empty")
	dpiPtr := flag.Int("dpi", defaults.DPI, "Render DPI for PDF pages")
	workersPtr := flag.Int("workers", 0, "Parallel page workers (0 = auto from CPU/RAM)")
	protectPtr := flag.Bool("protect", defaults.Protection, "Protect detected text/table/figure regions")
	detectorPtr := flag.String("detector", defaults.Detector, "Region detector: contrast, remote")
	remoteURLPtr := flag.String("remote-url", "", "Layout API server URL for -detector=remote")
	confidencePtr := flag.Float64("confidence", defaults.Confidence, "Minimum detection confidence")
	marginPtr := flag.Int("margin", defaults.Margin, "Safety margin around protected regions (px)")
	protectInkPtr := flag.Bool("protect-ink", defaults.ProtectInk, "Preserve red/blue stamp and signature ink")
	configPtr := flag.String("config", "", "Optional yaml config file (flags override)")
	writePresetsPtr := flag.String("write-presets", "", "Write the preset zones to this file and exit")

	flag.Parse()

	if *writePresetsPtr != "" {
		store := zone.NewStore(*dpiPtr)
		for _, z := range zone.Presets() {
			if err := store.Add(z); err != nil {
				log.Fatalf("[-] %v", err)
			}
		}
		if err := zone.WriteZoneFile(store, *writePresetsPtr); err != nil {
			log.Fatalf("[-] Failed to write presets: %v", err)
		}
		log.Printf("[*] Preset zones written to %s", *writePresetsPtr)
		return
	}

	cfg := defaults
	if *configPtr != "" {
		var err error
		cfg, err = config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Failed to load config: %v", err)
		}
	}

	// Flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "zones":
			cfg.ZonesFile = *zonesPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "protect":
			cfg.Protection = *protectPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "remote-url":
			cfg.RemoteURL = *remoteURLPtr
		case "confidence":
			cfg.Confidence = *confidencePtr
		case "margin":
			cfg.Margin = *marginPtr
		case "protect-ink":
			cfg.ProtectInk = *protectInkPtr
		}
	})
	if cfg.InputPath == "" {
		cfg.InputPath = *inputPtr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	src, err := source.Open(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Failed to open source: %v", err)
	}
	defer src.Close()

	var store *zone.Store
	if cfg.ZonesFile != "" {
		store, err = zone.ReadZoneFile(cfg.ZonesFile, cfg.DPI)
		if err != nil {
			log.Fatalf("[-] Failed to read zones: %v", err)
		}
		log.Printf("[*] Loaded %d zones from %s", store.Len(), cfg.ZonesFile)
	} else {
		store = zone.NewStore(cfg.DPI)
		for _, z := range zone.Presets() {
			if err := store.Add(z); err != nil {
				log.Fatalf("[-] %v", err)
			}
		}
		log.Printf("[*] Using %d preset zones", store.Len())
	}

	var detector detect.Detector
	if cfg.Protection {
		detector, err = detect.NewDetector(cfg.Detector, cfg.RemoteURL, cfg.Confidence)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
	}

	proc := processor.New(cfg.DPI, cfg.Margin)
	proc.Remover.ProtectHueBands = cfg.ProtectInk

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = processor.RunBatch(ctx, src, store, proc, processor.BatchOptions{
		OutputDir:  cfg.OutputDir,
		DPI:        cfg.DPI,
		Workers:    cfg.Workers,
		Protection: cfg.Protection,
		Detector:   detector,
	})
	if err != nil {
		log.Fatalf("[-] Processing failed: %v", err)
	}
	log.Printf("[*] Done: output in %s", cfg.OutputDir)
}
