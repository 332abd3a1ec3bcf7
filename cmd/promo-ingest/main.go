// Command promo-ingest builds the promo code bloom filter consumed by the
// storefront server. Campaign drops arrive as gzip-compressed files with one
// upper-case code per line; every drop file in the data directory is
// streamed, merged into a single filter, and the result is written out as
// one serialized bloom filter.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCapacity = 10_000_000
	defaultFPR      = 0.0001
	minCodeLen      = 6
	maxCodeLen      = 12
	progressEvery   = 1_000_000
)

func main() {
	var (
		dataDir  string
		outPath  string
		capacity uint64
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.gz promo code drops")
	flag.StringVar(&outPath, "out", "promo.bloom", "output path for the serialized filter")
	flag.Uint64Var(&capacity, "capacity", defaultCapacity, "expected total number of codes")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, outPath, uint(capacity)); err != nil {
		slog.Error("promo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("promo ingest completed successfully")
}

func run(ctx context.Context, dataDir, outPath string, capacity uint) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list drop files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.gz drop files in %s", dataDir)
	}

	slog.Info("building promo filter", slog.Int("files", len(files)))

	filter := bloom.NewWithEstimates(capacity, defaultFPR)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(ingestFile(ctx, i, f, filter, &mu))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeFilter(filter, outPath)
}

// ingestFile streams one drop file and adds valid-length codes to the shared
// filter.
func ingestFile(ctx context.Context, idx int, path string, filter *bloom.BloomFilter, mu *sync.Mutex) func() error {
	return func() error {
		var count uint64

		if err := streamGzFile(ctx, path, func(code string) {
			code = strings.ToUpper(strings.TrimSpace(code))
			if len(code) < minCodeLen || len(code) > maxCodeLen {
				return
			}
			mu.Lock()
			filter.AddString(code)
			mu.Unlock()

			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("codes", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "ingest file %d", idx+1)
		}

		slog.Info("ingest complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_codes", count),
		)
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(code string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeFilter serializes the filter atomically next to the target path.
func writeFilter(filter *bloom.BloomFilter, outPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".promo-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := filter.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write filter")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace filter file")
	}

	slog.Info("filter written", slog.String("path", outPath))
	return nil
}
