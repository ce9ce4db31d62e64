// Package pipeline runs the snapshot processing chain: decrypt, decode,
// extract, aggregate, persist, render. One Pipeline serves all regions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/htrskmiku/solabot/internal/config"
	"github.com/htrskmiku/solabot/internal/crypto"
	"github.com/htrskmiku/solabot/internal/db"
	"github.com/htrskmiku/solabot/internal/decode"
	"github.com/htrskmiku/solabot/internal/harvest"
	"github.com/htrskmiku/solabot/internal/ingest"
	"github.com/htrskmiku/solabot/internal/refdata"
	"github.com/htrskmiku/solabot/internal/render"
)

// rawFilePattern matches stored raw snapshots: {region}_{apiType}_{user}.bin.
var rawFilePattern = regexp.MustCompile(`^([a-z]+)_([a-z]+)_(\d+)\.bin$`)

// Pipeline processes raw snapshots into parsed inventories and rendered
// images. The snapshot record store is optional.
type Pipeline struct {
	cfg      config.Server
	decoder  *decode.Decoder
	extract  *harvest.Extractor
	renderer *render.Renderer
	store    *db.DB
}

// New builds the pipeline from loaded config and reference data.
func New(cfg config.Server, bundle *refdata.Bundle) (*Pipeline, error) {
	specs := make(map[string]crypto.KeySpec, len(cfg.Keysets))
	for region, ks := range cfg.Keysets {
		specs[region] = crypto.KeySpec{
			KeyHex:     ks.KeyHex,
			IVHex:      ks.IVHex,
			Passphrase: ks.Passphrase,
			Salt:       ks.Salt,
		}
	}
	keyring, err := crypto.NewKeyring(specs)
	if err != nil {
		return nil, fmt.Errorf("building keyring: %w", err)
	}

	renderer, err := render.NewRenderer(bundle)
	if err != nil {
		return nil, fmt.Errorf("building renderer: %w", err)
	}

	return &Pipeline{
		cfg:      cfg,
		decoder:  decode.NewDecoder(keyring),
		extract:  &harvest.Extractor{QuarantineDir: cfg.QuarantineDir},
		renderer: renderer,
	}, nil
}

// SetStore attaches the optional snapshot record store.
func (p *Pipeline) SetStore(store *db.DB) { p.store = store }

// Run consumes jobs until ctx is cancelled or the queue closes. A failed
// job is logged and dropped; the worker never stops on data errors.
func (p *Pipeline) Run(ctx context.Context, jobs <-chan ingest.Job) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			if err := p.Process(ctx, job); err != nil {
				slog.Error("snapshot processing failed",
					"region", job.Region,
					"user", job.UserID,
					"path", job.Path,
					"err", err,
				)
			}
		}
	}
}

// Process runs one snapshot through the full chain.
func (p *Pipeline) Process(ctx context.Context, job ingest.Job) error {
	if job.APIType != ingest.APITypeMysekai {
		slog.Debug("skipping non-harvest snapshot", "api", job.APIType, "path", job.Path)
		return nil
	}

	raw, err := os.ReadFile(job.Path)
	if err != nil {
		return &harvest.IOError{Op: "read", Path: job.Path, Err: err}
	}

	doc, err := p.decoder.Decode(raw, job.Region)
	if err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	userID := strconv.FormatInt(job.UserID, 10)
	sites, err := p.extract.Extract(doc, job.Region, userID)
	if err != nil {
		var missing *harvest.MissingDataError
		if errors.As(err, &missing) {
			slog.Warn("snapshot has no harvest map, open the harvest area in game and re-upload",
				"region", job.Region,
				"user", job.UserID,
				"quarantine", missing.QuarantinePath,
			)
		}
		return fmt.Errorf("extracting harvest data: %w", err)
	}

	inv := harvest.Aggregate(sites)

	parsedPath := filepath.Join(p.cfg.ParsedDir, fmt.Sprintf("%s_%s.json", job.Region, userID))
	if err := harvest.SaveInventory(parsedPath, inv); err != nil {
		return fmt.Errorf("persisting inventory: %w", err)
	}

	mapPath, overviewPath, err := p.RenderInventory(inv, job.Region, userID)
	if err != nil {
		return err
	}

	if p.store != nil {
		rec := db.SnapshotRecord{
			Region:       job.Region,
			UserID:       job.UserID,
			CapturedAt:   time.Now(),
			RawPath:      job.Path,
			ParsedPath:   parsedPath,
			MapPath:      mapPath,
			OverviewPath: overviewPath,
		}
		if err := p.store.RecordSnapshot(ctx, rec); err != nil {
			slog.Error("snapshot record not stored", "err", err)
		}
	}

	slog.Info("snapshot processed",
		"region", job.Region,
		"user", job.UserID,
		"sites", len(sites),
		"map", mapPath,
	)
	return nil
}

// RenderInventory draws the composite map and the resource overview for an
// aggregated inventory and returns both image paths.
func (p *Pipeline) RenderInventory(inv harvest.SiteInventory, region, userID string) (mapPath, overviewPath string, err error) {
	opts := render.SaveOptions{Format: p.cfg.SaveFormat, JPEGQuality: p.cfg.JPEGQuality}
	ext := imageExt(p.cfg.SaveFormat)

	mapPath = filepath.Join(p.cfg.MapDir, fmt.Sprintf("%s_%s%s", region, userID, ext))
	if err := render.Save(mapPath, p.renderer.Composite(inv, p.cfg.OnlyRare), opts); err != nil {
		return "", "", fmt.Errorf("saving composite map: %w", err)
	}

	overviewPath = filepath.Join(p.cfg.OverviewDir, fmt.Sprintf("%s_%s%s", region, userID, ext))
	overview := p.renderer.Overview(inv, p.cfg.OnlyRare, p.cfg.OverviewMaxWidth)
	if err := render.Save(overviewPath, overview, opts); err != nil {
		return "", "", fmt.Errorf("saving overview: %w", err)
	}

	return mapPath, overviewPath, nil
}

// Backlog processes raw snapshots already on disk, typically ones uploaded
// while the service was down.
func (p *Pipeline) Backlog(ctx context.Context) error {
	entries, err := os.ReadDir(p.cfg.RawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scanning raw dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		job, ok := ParseRawFilename(e.Name())
		if !ok {
			continue
		}
		job.Path = filepath.Join(p.cfg.RawDir, e.Name())
		if err := p.Process(ctx, job); err != nil {
			slog.Error("backlog snapshot failed", "path", job.Path, "err", err)
		}
	}
	return nil
}

// ParseRawFilename recovers job metadata from a stored raw snapshot name.
// The returned job has no Path.
func ParseRawFilename(name string) (ingest.Job, bool) {
	m := rawFilePattern.FindStringSubmatch(name)
	if m == nil {
		return ingest.Job{}, false
	}
	userID, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return ingest.Job{}, false
	}
	return ingest.Job{Region: m[1], APIType: m[2], UserID: userID}, true
}

func imageExt(format string) string {
	switch format {
	case "jpg", "jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}
