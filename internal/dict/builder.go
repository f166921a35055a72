package dict

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"als/internal/escape"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
	"als/internal/stats"
)

// Options bounds dictionary admission.
type Options struct {
	MaxDictionaryEntries int
	EnumMaxCardinality   int
	HashmapThreshold     int
}

// DefaultOptions returns the defaults used when no configuration overrides them.
func DefaultOptions() Options {
	return Options{MaxDictionaryEntries: 65536, EnumMaxCardinality: 16, HashmapThreshold: 64}
}

// columnScan is the per-column state accumulated during the parallel
// counting phase: which distinct strings appeared, in first-seen row
// order, and whether the column qualifies for A2 enum promotion.
type columnScan struct {
	name      string
	firstSeen []string // distinct strings, in first-occurrence order within this column
	distinct  map[string]struct{}
	isEnum    bool

	// boolFold maps each original distinct string to its canonical
	// "true"/"false" spelling, populated only when every distinct value
	// in the column case-insensitively names a boolean literal (A2).
	boolFold map[string]string
}

// Builder implements C6: a frequency-counting adaptive map feeding A1, an
// enum-cardinality check feeding A2, and a single shared Dictionary that
// both paths admit into, so that strings repeated across columns share one
// entry instead of each column paying for its own copy.
type Builder struct {
	opts Options
	freq *AdaptiveMap

	mu      sync.Mutex
	scans   []*columnScan
	byName  map[string]*columnScan

	caseFold cases.Caser
}

// NewBuilder constructs a Builder. Its caseFold field is a Unicode-correct case folder
// (grounded on aretext's use of golang.org/x/text/cases+language for
// case-insensitive search) used only to recognize boolean-literal column
// content during enum detection; it never mutates string cell content.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:     opts,
		freq:     NewAdaptiveMap(opts.HashmapThreshold),
		byName:   make(map[string]*columnScan),
		caseFold: cases.Fold(),
	}
}

// ScanColumn is the per-column unit of work of the counting phase; it is
// safe to call from several goroutines, though the compressor façade (C9)
// calls it once per column, sequentially. It updates the shared frequency
// map (lock-free per-entry, per AdaptiveMap's contract) and records this
// column's own distinct-string state for the later enum-promotion decision.
func (b *Builder) ScanColumn(col *model.Column) {
	if col.Type != model.TypeString && col.Type != model.TypeMixed {
		b.registerScan(&columnScan{name: col.Name, distinct: map[string]struct{}{}})
		return
	}
	scan := &columnScan{name: col.Name, distinct: map[string]struct{}{}}
	for _, v := range col.Values {
		if v.Kind != model.KindString {
			continue
		}
		b.freq.Add(v.Str, len(v.Str))
		if _, seen := scan.distinct[v.Str]; !seen {
			scan.distinct[v.Str] = struct{}{}
			scan.firstSeen = append(scan.firstSeen, v.Str)
		}
	}
	scan.isEnum = len(scan.distinct) > 0 && len(scan.distinct) <= b.opts.EnumMaxCardinality
	if scan.isEnum {
		scan.boolFold = b.detectBooleanFold(scan.firstSeen)
	}
	b.registerScan(scan)
}

// detectBooleanFold reports the canonical "true"/"false" spelling for each
// distinct value when every one of them case-insensitively names a boolean
// literal (true/false/yes/no). Returns nil when the column isn't
// boolean-like, leaving its strings untouched.
func (b *Builder) detectBooleanFold(distinct []string) map[string]string {
	fold := make(map[string]string, len(distinct))
	for _, s := range distinct {
		switch b.caseFold.String(s) {
		case "true", "yes":
			fold[s] = "true"
		case "false", "no":
			fold[s] = "false"
		default:
			return nil
		}
	}
	return fold
}

func (b *Builder) registerScan(s *columnScan) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scans = append(b.scans, s)
	b.byName[s.name] = s
}

// Result is the outcome of Finalize: the single admitted dictionary (nil
// if nothing was admitted) and a lookup table from string to its assigned
// index, for RewriteColumn to consult.
type Result struct {
	Dict  *operator.Dictionary
	Index map[string]int
}

// Finalize runs the serial admission pass: A1's break-even frequency rule
// and A2's unconditional enum promotion, over columns in schema order so
// that admission order (and therefore dictionary index assignment) is
// deterministic regardless of how many goroutines ran ScanColumn.
func (b *Builder) Finalize(schemaOrder []string) Result {
	dictID := newDictID()
	d := &operator.Dictionary{ID: dictID}
	index := make(map[string]int)
	canonicalIdx := make(map[string]int) // canonical entry string -> its dict index, for bool-fold dedup

	// admitCanonical admits the canonical form once and returns its index,
	// whether it was just inserted or already present.
	admitCanonical := func(canonical string) (int, bool) {
		if idx, ok := canonicalIdx[canonical]; ok {
			return idx, true
		}
		if len(d.Entries) >= b.opts.MaxDictionaryEntries {
			return 0, false // capacity exceeded: skip without failing
		}
		idx := d.Append(canonical)
		canonicalIdx[canonical] = idx
		return idx, true
	}

	for _, name := range schemaOrder {
		scan := b.byName[name]
		if scan == nil {
			continue
		}
		for _, s := range scan.firstSeen {
			if _, already := index[s]; already {
				continue
			}
			if scan.isEnum {
				// A2: unconditional, regardless of A1's verdict. Boolean
				// literals fold to a canonical "true"/"false" entry prior
				// to admission, so case variants (TRUE, yes, no, ...)
				// share one dictionary slot.
				canonical := s
				if scan.boolFold != nil {
					canonical = scan.boolFold[s]
				}
				if idx, ok := admitCanonical(canonical); ok {
					index[s] = idx
				}
				continue
			}
			freq, ok := b.freq.Get(s)
			if !ok {
				continue
			}
			refSize := estimateRefSize(dictID, len(d.Entries))
			admissionBytes := float64(1 + len(escape.Escape(s))) // one dict entry's header cost, resolved in DESIGN.md
			if float64(freq.Count)*(freq.MeanLen-float64(refSize)) > admissionBytes {
				if idx, ok := admitCanonical(s); ok {
					index[s] = idx
				}
			}
		}
	}

	if len(d.Entries) == 0 {
		return Result{}
	}
	return Result{Dict: d, Index: index}
}

// estimateRefSize returns the exact byte size of a DictRef token pointing
// at the next-to-be-assigned index in dictID, used as ref_size(s) in the
// A1 inequality.
func estimateRefSize(dictID string, nextIndex int) int {
	return serialize.OpSize(operator.NewDictRef(dictID, nextIndex))
}

// RewriteColumn replaces top-level Raw(string) operators in ops with
// DictRef when the string was admitted and doing so is strictly smaller
// than the Raw encoding. Operators nested inside Multiply/Toggle are left
// untouched: the cover-selection DP pass operates at the same granularity,
// and revisiting nested sub-sequences is out of scope for this leaf-level
// rewrite. rec, if non-nil, is credited with a dictionary hit for every
// string rewritten to a DictRef and a miss for every string candidate that
// wasn't (never admitted, or admitted but not smaller as a reference
// here). When r holds no dictionary, ops is returned as is and nothing is
// recorded.
func (r Result) RewriteColumn(ops []*operator.Op, rec *stats.Recorder) []*operator.Op {
	if r.Dict == nil {
		return ops
	}
	out := make([]*operator.Op, len(ops))
	for i, op := range ops {
		out[i] = r.rewriteOne(op, rec)
	}
	return out
}

func (r Result) rewriteOne(op *operator.Op, rec *stats.Recorder) *operator.Op {
	if op.Kind != operator.KindRaw || op.Raw.Kind != model.KindString {
		return op
	}
	idx, ok := r.Index[op.Raw.Str]
	if !ok {
		if rec != nil {
			rec.RecordDictMiss()
		}
		return op
	}
	ref := operator.NewDictRef(r.Dict.ID, idx)
	if serialize.OpSize(ref) >= serialize.OpSize(op) {
		if rec != nil {
			rec.RecordDictMiss()
		}
		return op
	}
	if rec != nil {
		rec.RecordDictHit()
	}
	return ref
}

func newDictID() string {
	return "d" + uuid.New().String()[:8]
}
