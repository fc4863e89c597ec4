package fuse

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/expofuse/expofuse/pkg/errors"
	"github.com/expofuse/expofuse/pkg/identity"
	"github.com/expofuse/expofuse/pkg/logging"
	"github.com/expofuse/expofuse/pkg/normalize"
	"github.com/expofuse/expofuse/pkg/reconcile"
	"github.com/expofuse/expofuse/pkg/table"
)

// Mode names an ingestion mode, selected by which raw inputs exist.
type Mode string

// Ingestion modes.
const (
	ModeOCRQR Mode = "ocr_qr"
	ModeExcel Mode = "excel"
)

// FallbackPolicy decides what happens to a scraped record whose domain
// matches no row of the primary table.
type FallbackPolicy string

// Fallback policies for unmatched scrape records.
const (
	// FallbackMostCommon assigns the most common file_name of the primary
	// table. A best-effort heuristic, not a guaranteed join.
	FallbackMostCommon FallbackPolicy = "most-common"
	// FallbackSkip drops unmatched scrape records.
	FallbackSkip FallbackPolicy = "skip"
)

// Inputs names the raw source files of one fusion run. Empty paths are
// treated as absent sources.
type Inputs struct {
	OCRQRPath  string
	ScrapePath string
	ExcelPath  string
	SessionDir string
}

// Result is the outcome of one fusion run.
type Result struct {
	Table       *table.Table
	Mode        Mode
	SourceRows  int
	ScrapeRows  int
	Entities    int
	ScrapeError error // non-fatal secondary-source failure, if any
}

// Pipeline fuses raw extractor outputs into one canonical table per run.
// Merging is a pure function of the current batch; no cross-run state.
type Pipeline struct {
	mapping  *Mapping
	resolver *identity.Resolver
	merger   *reconcile.Merger
	fallback FallbackPolicy
	perPage  bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMapping overrides the extractor-output mapping.
func WithMapping(m *Mapping) Option {
	return func(p *Pipeline) { p.mapping = m }
}

// WithResolver overrides the identity resolver.
func WithResolver(r *identity.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithFallback sets the unmatched-scrape-record policy.
func WithFallback(policy FallbackPolicy) Option {
	return func(p *Pipeline) { p.fallback = policy }
}

// WithPerPageRows keeps one output row per source page instead of merging
// pages of the same entity into one record. CompanyID is still shared
// across pages of the same file.
func WithPerPageRows() Option {
	return func(p *Pipeline) { p.perPage = true }
}

// New creates a Pipeline with defaults: embedded mapping, default identity
// fields, most-common fallback, one merged row per entity.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		mapping:  DefaultMapping(),
		fallback: FallbackMostCommon,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = identity.NewResolver()
	}
	p.merger = reconcile.NewMerger(p.resolver)
	return p
}

// Run selects the ingestion mode from the inputs that exist and produces
// the fused table. The OCR/QR JSON takes precedence; an operator workbook
// is the fallback mode; neither existing is fatal.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	log := logging.FromContext(ctx)

	if in.OCRQRPath != "" && exists(in.OCRQRPath) {
		return p.runOCRQR(ctx, in)
	}

	excelPath := in.ExcelPath
	if excelPath == "" && in.SessionDir != "" {
		if found, err := DiscoverExcel(in.SessionDir); err == nil {
			excelPath = found
		}
	}
	if excelPath != "" && exists(excelPath) {
		return p.runExcel(ctx, excelPath)
	}

	log.Error().
		Str("ocr_qr", in.OCRQRPath).
		Str("excel", in.ExcelPath).
		Msg("No usable source found")
	return nil, errors.ErrNoUsableSource
}

// runOCRQR ingests the OCR+QR merge JSON plus the optional scrape
// enrichment, links the two by normalized domain, and fuses the result.
func (p *Pipeline) runOCRQR(ctx context.Context, in Inputs) (*Result, error) {
	log := logging.FromContext(ctx)

	primary, err := LoadOCRQR(in.OCRQRPath, p.mapping)
	if err != nil {
		return nil, err
	}
	if primary.Empty() {
		return nil, errors.NewEmptyDatasetError("ocr_qr", in.OCRQRPath)
	}
	log.Info().Int("rows", primary.Len()).Int("columns", len(primary.Columns())).Msg("Loaded OCR/QR source")

	// Fold URL variants before domain matching so Website is authoritative.
	reconcile.MergeAliases(primary, p.mapping.Aliases)

	result := &Result{Mode: ModeOCRQR, SourceRows: primary.Len()}

	if in.ScrapePath != "" {
		scraped, err := p.loadScrape(ctx, in.ScrapePath)
		if err != nil {
			result.ScrapeError = err
		} else if scraped != nil {
			result.ScrapeRows = scraped.Len()
			p.linkScrape(ctx, primary, scraped)
			primary.AppendTable(scraped)
		}
	}

	p.assignCompanyIDs(primary)
	primary.SortBy(FileColumn, reconcile.IDColumn)

	return p.finish(ctx, primary, result)
}

// runExcel passes a single enriched workbook through the fusion stages.
func (p *Pipeline) runExcel(ctx context.Context, path string) (*Result, error) {
	log := logging.FromContext(ctx)

	t, err := LoadExcel(path)
	if err != nil {
		return nil, err
	}
	if t.Empty() {
		return nil, errors.NewEmptyDatasetError("excel", path)
	}
	log.Info().Str("path", path).Int("rows", t.Len()).Msg("Loaded Excel source")

	result := &Result{Mode: ModeExcel, SourceRows: t.Len()}
	return p.finish(ctx, t, result)
}

// loadScrape reads the optional enrichment source. A missing or empty file
// is non-fatal: the run proceeds on the primary source alone.
func (p *Pipeline) loadScrape(ctx context.Context, path string) (*table.Table, error) {
	log := logging.FromContext(ctx)

	if !exists(path) {
		log.Warn().Str("path", path).Msg("Scrape source missing, continuing with primary source only")
		return nil, errors.NewMissingSourceError("scrape", path)
	}
	scraped, err := LoadScrape(path)
	if err != nil {
		log.Warn().Err(err).Msg("Scrape source unreadable, continuing with primary source only")
		return nil, err
	}
	if scraped.Empty() {
		log.Warn().Str("path", path).Msg("Scrape source has no successful records")
		return nil, errors.NewEmptyDatasetError("scrape", path)
	}
	log.Info().Int("rows", scraped.Len()).Msg("Loaded scrape enrichment")
	return scraped, nil
}

// linkScrape assigns each scraped row a file_name by normalized-domain
// lookup against the primary table, first match winning. Unmatched rows
// follow the fallback policy.
func (p *Pipeline) linkScrape(ctx context.Context, primary, scraped *table.Table) {
	log := logging.FromContext(ctx)

	domains := make(map[string]string)
	for i := 0; i < primary.Len(); i++ {
		d := normalize.Domain(normalize.Clean(primary.Get(i, "Website")))
		if d == "" {
			continue
		}
		if _, taken := domains[d]; !taken {
			domains[d] = primary.Get(i, FileColumn)
		}
	}
	fallback := mostCommonValue(primary, FileColumn)

	matched, unmatched := 0, 0
	var drop []int
	for i := 0; i < scraped.Len(); i++ {
		d := normalize.Domain(normalize.Clean(scraped.Get(i, "url")))
		if d == "" {
			d = normalize.Domain(normalize.Clean(scraped.Get(i, "Website")))
		}
		if file, ok := domains[d]; ok && d != "" {
			scraped.Set(i, FileColumn, file)
			matched++
			continue
		}
		unmatched++
		if p.fallback == FallbackSkip {
			drop = append(drop, i)
			continue
		}
		scraped.Set(i, FileColumn, fallback)
	}
	for i := len(drop) - 1; i >= 0; i-- {
		scraped.RemoveRow(drop[i])
	}

	log.Info().
		Int("matched", matched).
		Int("unmatched", unmatched).
		Str("fallback", string(p.fallback)).
		Msg("Linked scrape records to source files")
}

// assignCompanyIDs gives every distinct file_name one CompanyID, resolved
// from the first row of the file that yields a deterministic key; files
// with no identifying attribute get one shared random key.
func (p *Pipeline) assignCompanyIDs(t *table.Table) {
	byFile := make(map[string]string)
	for i := 0; i < t.Len(); i++ {
		file := t.Get(i, FileColumn)
		if id, ok := byFile[file]; ok {
			t.Set(i, reconcile.IDColumn, id)
			continue
		}
		key := p.resolver.Resolve(t.Row(i))
		if key.IsRandom() {
			// Later pages of the same file may carry the identifying
			// attribute this one lacks.
			if better, ok := resolveAhead(t, p.resolver, i, file); ok {
				key = better
			}
		}
		id := key.CompanyID()
		byFile[file] = id
		t.Set(i, reconcile.IDColumn, id)
	}
}

// resolveAhead scans the remaining rows of the same file for a
// deterministic identity key.
func resolveAhead(t *table.Table, r *identity.Resolver, start int, file string) (identity.Key, bool) {
	for j := start + 1; j < t.Len(); j++ {
		if t.Get(j, FileColumn) != file {
			continue
		}
		if key := r.Resolve(t.Row(j)); !key.IsRandom() {
			return key, true
		}
	}
	return identity.Key{}, false
}

// finish runs the shared fusion tail: cell normalization, junk-column
// removal, column reconciliation, row merging, repeat scrubbing, and
// canonical column ordering.
func (p *Pipeline) finish(ctx context.Context, t *table.Table, result *Result) (*Result, error) {
	log := logging.FromContext(ctx)

	t.Transform(normalize.Clean)

	var junk []string
	for _, col := range t.Columns() {
		if p.mapping.IsJunk(col) {
			junk = append(junk, col)
		}
	}
	if len(junk) > 0 {
		t.DropColumns(junk...)
		log.Debug().Strs("columns", junk).Msg("Dropped junk columns")
	}

	reconcile.Columns(t, p.mapping.Bilingual, p.mapping.Aliases)

	out := t
	if p.perPage {
		// Per-page output keeps one row per source page; rows still need
		// an entity key so pages of one file share a CompanyID.
		for i := 0; i < t.Len(); i++ {
			row := t.Row(i)
			if row[reconcile.IDColumn] == "" {
				row[reconcile.IDColumn] = p.resolver.Resolve(row).CompanyID()
			}
		}
		t.AddColumn(reconcile.IDColumn)
	} else {
		out = p.merger.MergeRows(t, reconcile.IDColumn)
	}

	if out.HasColumn(FileColumn) {
		out.MoveToFront(FileColumn)
	}
	out.MoveToFront(reconcile.IDColumn)

	result.Table = out
	result.Entities = out.Len()
	log.Info().
		Str("mode", string(result.Mode)).
		Int("entities", result.Entities).
		Int("columns", len(out.Columns())).
		Msg("Fusion complete")
	return result, nil
}

// OutputName builds the timestamped default output workbook path.
func OutputName(dir string, now time.Time) string {
	return filepath.Join(dir, "merged_final_"+now.Format("20060102_150405")+".xlsx")
}

// mostCommonValue returns the most frequent value of a column, ties broken
// lexicographically for determinism.
func mostCommonValue(t *table.Table, column string) string {
	counts := make(map[string]int)
	for i := 0; i < t.Len(); i++ {
		if v := t.Get(i, column); v != "" {
			counts[v]++
		}
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)
	best, bestCount := "", 0
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
