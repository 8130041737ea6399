package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/tusk/internal/adapters/telemetry"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/ui/output"
)

// printResults prints one line per file and returns ErrBatchFailed when any
// file failed.
func printResults(p *output.Printer, batch *domain.BatchReport) error {
	failed := false
	for _, r := range batch.Results {
		if r.Err != nil {
			failed = true
			p.Failure(r.Path, r.Err)
			continue
		}
		p.Success(r.Path, describe(r.Record))
	}
	if failed {
		return domain.ErrBatchFailed
	}
	return nil
}

func describe(rec *domain.CompilationRecord) string {
	parts := []string{fmt.Sprintf("%s (%s)", rec.Action, rec.Reason)}
	parts = append(parts, fmt.Sprintf("%s to %s",
		humanize.Bytes(uint64(max(rec.SourceSize, 0))),
		humanize.Bytes(uint64(max(rec.ArtifactSize, 0))),
	))
	if rec.Codec != domain.CodecNone {
		parts = append(parts, fmt.Sprintf("%s %.2fx", rec.Codec, rec.CompressionRatio))
	}
	parts = append(parts, rec.Elapsed.Round(time.Microsecond).String())
	return strings.Join(parts, ", ")
}

func printSummary(p *output.Printer, s domain.BatchStats) {
	p.Pair("files", fmt.Sprintf("%d ok, %d failed", s.Succeeded, s.Failed))
	p.Pair("actions", fmt.Sprintf("%d compiled, %d loaded", s.Compiled, s.Loaded))
	p.Pair("source", humanize.Bytes(uint64(max(s.TotalSourceBytes, 0))))
	p.Pair("artifacts", fmt.Sprintf("%s (avg %s)",
		humanize.Bytes(uint64(max(s.TotalArtifactBytes, 0))),
		humanize.Bytes(uint64(max(s.AvgArtifactSize, 0))),
	))
	p.Pair("cache hit rate", percent(s.CacheHitRate))
	p.Pair("throughput", humanize.Bytes(uint64(max(s.Throughput, 0)))+"/s")
	p.Pair("elapsed", s.Elapsed.Round(time.Microsecond).String())
}

func printCache(p *output.Printer, s domain.CacheStats, in domain.IngestStats) {
	p.Pair("ast cache", fmt.Sprintf("%s memory, %s disk, %s parsed (%s hit rate)",
		humanize.Comma(s.MemoryHits),
		humanize.Comma(s.DiskHits),
		humanize.Comma(s.Misses),
		percent(s.HitRate()),
	))
	p.Pair("ingestion", fmt.Sprintf("%s mapped, %s buffered, %s read",
		humanize.Comma(in.Mapped),
		humanize.Comma(in.Buffered),
		humanize.Bytes(uint64(max(in.Bytes, 0))),
	))
}

func printTimings(p *output.Printer, timings []telemetry.Timing) {
	for _, t := range timings {
		p.Pair("span "+t.Name, fmt.Sprintf("%d calls, avg %s, max %s, %d errors",
			t.Count,
			t.Average().Round(time.Microsecond),
			t.Max.Round(time.Microsecond),
			t.Errors,
		))
	}
}

func percent(f float64) string {
	return humanize.FtoaWithDigits(f*100, 1) + "%"
}
