// Package compress implements the compressor façade (C9): it orchestrates
// detection, optimization, dictionary building, and serialization,
// computes the compression ratio, and applies the CTX fallback policy. The
// column-parallel scheduler is built on golang.org/x/sync/errgroup to fan
// work out across a bounded goroutine pool.
package compress

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"als/internal/alserr"
	"als/internal/config"
	"als/internal/detect"
	"als/internal/dict"
	"als/internal/document"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/optimize"
	"als/internal/parse"
	"als/internal/serialize"
	"als/internal/stats"
)

// Compressor orchestrates one compress/decompress call against a fixed
// Config. It is safe to reuse across multiple calls; each call gets its
// own stats.Recorder.
type Compressor struct {
	cfg config.Config
}

// New builds a Compressor bound to cfg.
func New(cfg config.Config) *Compressor {
	return &Compressor{cfg: cfg}
}

// columnPlan is the per-column intermediate state: the detected-and-chosen
// operator cover before dictionary rewriting.
type columnPlan struct {
	name    string
	colType model.ColumnType
	ops     []*operator.Op
}

// Compress runs the full C9 pipeline: per-column detection/optimization
// (parallel across columns at or above parallel_threshold cells), global
// dictionary admission, a rewrite of each chosen cover that swaps
// top-level Raw strings for DictRefs (the cover itself is not
// re-optimized), serialization, ratio computation, and CTX fallback. originalInput is the exact source
// bytes (CSV or JSON) that produced table; it becomes the CTX body and the
// denominator of the compression ratio.
func (c *Compressor) Compress(ctx context.Context, table *model.TabularData, originalInput []byte) (*document.Document, *stats.Recorder, error) {
	rec := stats.New()
	rec.AddInputBytes(int64(len(originalInput)))

	if err := table.Validate(); err != nil {
		return nil, rec, err
	}

	plans, err := c.planColumns(ctx, table, rec)
	if err != nil {
		return nil, rec, err
	}

	plans, dicts := c.buildDictionaries(table, plans, rec)

	schema := make([]document.SchemaColumn, len(plans))
	streams := make([]document.ColumnStream, len(plans))
	for i, p := range plans {
		schema[i] = document.SchemaColumn{Name: p.name, Type: p.colType}
		streams[i] = document.ColumnStream(p.ops)
	}

	alsDoc := &document.Document{
		Version: document.CurrentVersion,
		Format:  document.FormatAls,
		Dicts:   dicts,
		Schema:  schema,
		Streams: streams,
	}

	alsText, err := serialize.Serialize(alsDoc, false)
	if err != nil {
		return nil, rec, err
	}

	var ratio float64
	if len(originalInput) > 0 {
		ratio = float64(len(alsText)) / float64(len(originalInput))
	}

	if len(originalInput) > 0 && ratio > c.cfg.CtxFallbackThreshold {
		rec.SetCtxFallback(true)
		ctxDoc := &document.Document{
			Version: document.CurrentVersion,
			Format:  document.FormatCtx,
			CtxBody: string(originalInput),
		}
		ctxText, err := serialize.Serialize(ctxDoc, false)
		if err != nil {
			return nil, rec, err
		}
		rec.AddOutputBytes(int64(len(ctxText)))
		return ctxDoc, rec, nil
	}

	rec.SetCtxFallback(false)
	rec.AddOutputBytes(int64(len(alsText)))
	return alsDoc, rec, nil
}

// planColumns runs D1-D4 (internal/detect) and the DP cover selection
// (internal/optimize) for every column. Columns run concurrently via an
// errgroup bounded to GOMAXPROCS workers once the table is at or above
// parallel_threshold cells; below it, the façade runs sequentially to
// avoid goroutine overhead on small inputs.
func (c *Compressor) planColumns(ctx context.Context, table *model.TabularData, rec *stats.Recorder) ([]columnPlan, error) {
	plans := make([]columnPlan, len(table.Columns))
	detectOpts := detect.Options{MinPatternLength: c.cfg.MinPatternLength, MaxRangeExpansion: c.cfg.MaxRangeExpansion}

	totalCells := table.RowCount * len(table.Columns)
	parallel := totalCells >= c.cfg.ParallelThreshold

	process := func(i int) error {
		if err := ctx.Err(); err != nil {
			return alserr.New(alserr.CodeCancelled, "compression cancelled").Wrap(err)
		}
		col := table.Columns[i]
		results := detect.Detect(col.Values, col.Type, detectOpts)
		cover := optimize.Optimize(col.Values, results)
		plans[i] = columnPlan{name: col.Name, colType: col.Type, ops: cover.Ops}
		recordColumnStats(rec, col.Name, results, cover)
		return nil
	}

	if !parallel {
		for i := range table.Columns {
			if err := process(i); err != nil {
				return nil, err
			}
		}
		return plans, nil
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i := range table.Columns {
		i := i
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return alserr.New(alserr.CodeCancelled, "compression cancelled").Wrap(err)
			}
			return process(i)
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

// recordColumnStats attributes each operator in the chosen cover back to
// the detector that produced it (by pointer identity: optimize.Optimize
// never copies a detect.Result's Op), and records the column's dominant
// non-Raw encoding, or marks it Raw-only when the cover used nothing but
// the implicit per-cell fallback.
func recordColumnStats(rec *stats.Recorder, column string, results []detect.Result, cover optimize.Cover) {
	byOp := make(map[*operator.Op]detect.Pattern, len(results))
	for _, r := range results {
		byOp[r.Op] = r.Pattern
	}

	counts := make(map[detect.Pattern]int)
	for _, op := range cover.Ops {
		if p, ok := byOp[op]; ok {
			rec.RecordPattern(p)
			counts[p]++
		}
	}

	if len(counts) == 0 {
		rec.SetColumnEncoding(column, 0, true)
		return
	}
	var best detect.Pattern
	bestCount := -1
	for p, n := range counts {
		if n > bestCount {
			best, bestCount = p, n
		}
	}
	rec.SetColumnEncoding(column, best, false)
}

// buildDictionaries runs C6 globally: it scans every string/mixed column
// into the frequency-counting Builder, finalizes admission (A1 break-even
// plus A2 enum promotion) in schema order for deterministic dictionary
// ids, then rewrites each column's cover to reference admitted strings via
// DictRef where profitable.
func (c *Compressor) buildDictionaries(table *model.TabularData, plans []columnPlan, rec *stats.Recorder) ([]columnPlan, []*operator.Dictionary) {
	b := dict.NewBuilder(dict.Options{
		MaxDictionaryEntries: c.cfg.MaxDictionaryEntries,
		EnumMaxCardinality:   c.cfg.EnumMaxCardinality,
		HashmapThreshold:     c.cfg.HashmapThreshold,
	})

	for _, col := range table.Columns {
		b.ScanColumn(col)
	}

	order := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		order[i] = col.Name
	}

	result := b.Finalize(order)
	if result.Dict == nil {
		return plans, nil
	}

	for i := range plans {
		plans[i].ops = result.RewriteColumn(plans[i].ops, rec)
	}
	return plans, []*operator.Dictionary{result.Dict}
}

// Decompress runs C8 end to end against an ALS-format document: resolving
// DictRefs and expanding every ColumnStream back into a TabularData. It
// rejects CTX documents; callers should check Format and use the CtxBody
// directly for those (CTX is a verbatim passthrough, not something to
// re-expand through the operator model). It needs no Config: expansion is
// purely a function of the document and its dictionaries, so this is a
// package-level function rather than a Compressor method.
func Decompress(doc *document.Document) (*model.TabularData, error) {
	if doc.Format == document.FormatCtx {
		return nil, alserr.New(alserr.CodeAlsSyntax, "document is CTX format; read CtxBody directly instead of decompressing")
	}
	return parse.ExpandToTable(doc)
}

// Parse is a thin pass-through to internal/parse.Parse so callers only
// need to import internal/compress for the whole compress/decompress
// surface.
func Parse(text string, opts parse.Options) (*document.Document, error) {
	return parse.Parse(text, opts)
}
