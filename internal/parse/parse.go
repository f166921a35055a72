// Package parse implements the ALS document parser: a single-pass lexer
// over the directive prefixes (!, $, #), operator punctuation, and escape
// sequences.
package parse

import (
	"strconv"
	"strings"

	"als/internal/alserr"
	"als/internal/document"
	"als/internal/model"
	"als/internal/operator"
)

// Options controls parsing strictness.
type Options struct {
	// Lenient accepts a version directive whose minor version is newer
	// than CurrentVersion.Minor; without it such a document fails with
	// VersionMismatch. No warning is emitted, and the rest of the document
	// is parsed the same way in both modes.
	Lenient bool
	// MaxRangeExpansion bounds Range operand counts.
	MaxRangeExpansion int64
}

// DefaultOptions returns the defaults used when no configuration overrides them.
func DefaultOptions() Options {
	return Options{Lenient: false, MaxRangeExpansion: 1_000_000_000}
}

// Parse parses an ALS document, validating the version directive first
// and failing with VersionMismatch on an unrecognized major version.
func Parse(text string, opts Options) (*document.Document, error) {
	text = normalizeLineEndings(text)
	p := &parser{src: text, opts: opts}
	return p.parseDocument()
}

func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

type parser struct {
	src  string
	pos  int
	opts Options
}

func (p *parser) parseDocument() (*document.Document, error) {
	major, minor, err := p.parseVersionLine()
	if err != nil {
		return nil, err
	}
	if major != document.CurrentVersion.Major {
		return nil, alserr.Newf(alserr.CodeVersionMismatch,
			"unsupported major version %d.%d", major, minor).AtOffset(0)
	}
	if minor > document.CurrentVersion.Minor && !p.opts.Lenient {
		return nil, alserr.Newf(alserr.CodeVersionMismatch,
			"unknown minor version %d.%d", major, minor).AtOffset(0)
	}

	doc := &document.Document{Version: document.Version{Major: major, Minor: minor}}

	if rest, ok := strings.CutPrefix(p.src[p.pos:], "!ctx\n"); ok {
		doc.Format = document.FormatCtx
		doc.CtxBody = rest
		return doc, nil
	}
	if rest, ok := strings.CutPrefix(p.src[p.pos:], "!ctx"); ok {
		doc.Format = document.FormatCtx
		doc.CtxBody = rest
		return doc, nil
	}

	doc.Format = document.FormatAls

	for {
		line, ok := p.peekSignificantLine()
		if !ok || !strings.HasPrefix(line, "$") {
			break
		}
		d, err := p.parseDictLine(line)
		if err != nil {
			return nil, err
		}
		doc.Dicts = append(doc.Dicts, d)
		p.consumeLine()
	}

	schemaLine, ok := p.peekSignificantLine()
	if !ok || !strings.HasPrefix(schemaLine, "#") {
		return nil, alserr.New(alserr.CodeAlsSyntax, "expected schema directive").AtOffset(int64(p.pos))
	}
	schema, err := p.parseSchemaLine(schemaLine)
	if err != nil {
		return nil, err
	}
	doc.Schema = schema
	p.consumeLine()

	streamsLine, ok := p.peekSignificantLine()
	if !ok {
		streamsLine = ""
	} else {
		p.consumeLine()
	}
	streams, err := p.parseStreams(streamsLine, schema)
	if err != nil {
		return nil, err
	}
	doc.Streams = streams

	return doc, nil
}

// parseVersionLine parses the mandatory leading "!vMAJOR.MINOR\n" line.
func (p *parser) parseVersionLine() (int, int, error) {
	if !strings.HasPrefix(p.src, "!v") {
		return 0, 0, alserr.New(alserr.CodeAlsSyntax, "document must start with a version directive (!vMAJOR.MINOR)").AtOffset(0)
	}
	idx := strings.IndexByte(p.src, '\n')
	var line string
	if idx < 0 {
		line = p.src[2:]
		p.pos = len(p.src)
	} else {
		line = p.src[2:idx]
		p.pos = idx + 1
	}
	dot := strings.IndexByte(line, '.')
	if dot < 0 {
		return 0, 0, alserr.Newf(alserr.CodeAlsSyntax, "malformed version directive %q", line).AtOffset(0)
	}
	major, err := strconv.Atoi(line[:dot])
	if err != nil {
		return 0, 0, alserr.Newf(alserr.CodeAlsSyntax, "malformed major version %q", line[:dot]).AtOffset(0)
	}
	minor, err := strconv.Atoi(line[dot+1:])
	if err != nil {
		return 0, 0, alserr.Newf(alserr.CodeAlsSyntax, "malformed minor version %q", line[dot+1:]).AtOffset(0)
	}
	return major, minor, nil
}

// peekSignificantLine returns the next non-blank, non-comment line
// (trimmed of leading/trailing whitespace is NOT performed on content,
// only used to classify blank/comment lines) without advancing p.pos
// permanently; it only skips over blank/comment lines it finds along the
// way. Returns ok=false at EOF.
func (p *parser) peekSignificantLine() (string, bool) {
	for {
		if p.pos >= len(p.src) {
			return "", false
		}
		end := strings.IndexByte(p.src[p.pos:], '\n')
		var line string
		if end < 0 {
			line = p.src[p.pos:]
		} else {
			line = p.src[p.pos : p.pos+end]
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			if end < 0 {
				p.pos = len(p.src)
				return "", false
			}
			p.pos += end + 1
			continue
		}
		return line, true
	}
}

// consumeLine advances past the line last returned by peekSignificantLine.
func (p *parser) consumeLine() {
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		p.pos = len(p.src)
		return
	}
	p.pos += end + 1
}

func (p *parser) parseDictLine(line string) (*operator.Dictionary, error) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed dictionary directive %q", line).AtOffset(int64(p.pos))
	}
	id := line[1:colon]
	rest := line[colon+1:]
	d := &operator.Dictionary{ID: id}
	if rest == "" {
		return d, nil
	}
	for _, tok := range splitUnescaped(rest, ',') {
		s, err := escUnescape(tok, p.pos)
		if err != nil {
			return nil, err
		}
		d.Append(s)
	}
	return d, nil
}

func (p *parser) parseSchemaLine(line string) ([]document.SchemaColumn, error) {
	rest := line[1:]
	if rest == "" {
		return nil, nil
	}
	var cols []document.SchemaColumn
	for _, tok := range splitUnescaped(rest, ',') {
		colon := lastUnescapedIndex(tok, ':')
		if colon < 0 {
			return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed column spec %q", tok).AtOffset(int64(p.pos))
		}
		name, err := escUnescape(tok[:colon], p.pos)
		if err != nil {
			return nil, err
		}
		typ, ok := model.ParseColumnType(tok[colon+1:])
		if !ok {
			return nil, alserr.Newf(alserr.CodeAlsSyntax, "unknown column type %q", tok[colon+1:]).AtOffset(int64(p.pos))
		}
		cols = append(cols, document.SchemaColumn{Name: name, Type: typ})
	}
	return cols, nil
}

func (p *parser) parseStreams(line string, schema []document.SchemaColumn) ([]document.ColumnStream, error) {
	colSegs := splitUnescaped(line, '|')
	if line == "" {
		colSegs = nil
	}
	if len(colSegs) != len(schema) {
		return nil, alserr.Newf(alserr.CodeColumnMismatch,
			"streams section has %d column(s) but schema declares %d", len(colSegs), len(schema)).AtOffset(int64(p.pos))
	}
	streams := make([]document.ColumnStream, len(colSegs))
	for i, seg := range colSegs {
		colType := schema[i].Type
		var ops document.ColumnStream
		if seg != "" {
			for _, tok := range splitUnescaped(seg, ',') {
				op, err := p.parseOp(tok, colType)
				if err != nil {
					return nil, err
				}
				ops = append(ops, op)
			}
		}
		streams[i] = ops
	}
	return streams, nil
}

func (p *parser) parseOp(tok string, colType model.ColumnType) (*operator.Op, error) {
	if strings.HasPrefix(tok, "$") {
		return p.parseDictRef(tok)
	}
	if idx := firstUnescapedIndex(tok, '~'); idx >= 0 {
		return p.parseToggleOrComposite(tok, idx, colType)
	}
	if idx := firstUnescapedIndex(tok, '>'); idx >= 0 {
		return p.parseRangeOrComposite(tok, idx, colType)
	}
	if idx := firstUnescapedIndex(tok, '*'); idx >= 0 {
		return p.parseMultiplyRaw(tok, idx, colType)
	}
	v, err := p.decodeScalar(tok, colType)
	if err != nil {
		return nil, err
	}
	return operator.Raw(v), nil
}

func (p *parser) parseDictRef(tok string) (*operator.Op, error) {
	dot := lastUnescapedIndex(tok, '.')
	if dot < 0 {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed dictref %q", tok).AtOffset(int64(p.pos))
	}
	id := tok[1:dot]
	idx, err := strconv.Atoi(tok[dot+1:])
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed dictref index in %q", tok).AtOffset(int64(p.pos))
	}
	return operator.NewDictRef(id, idx), nil
}

func (p *parser) parseToggleOrComposite(tok string, tildeIdx int, colType model.ColumnType) (*operator.Op, error) {
	a, err := p.decodeScalar(tok[:tildeIdx], colType)
	if err != nil {
		return nil, err
	}
	rest := tok[tildeIdx+1:]
	starIdx := firstUnescapedIndex(rest, '*')
	if starIdx < 0 {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "toggle %q missing count", tok).AtOffset(int64(p.pos))
	}
	b, err := p.decodeScalar(rest[:starIdx], colType)
	if err != nil {
		return nil, err
	}
	countPart := rest[starIdx+1:]
	n, mulN, err := splitOneOrTwoInts(countPart)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed toggle count in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	toggle, err := operator.NewToggle(a, b, n)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "invalid toggle in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	if mulN == 0 {
		return toggle, nil
	}
	mul, err := operator.NewMultiply(toggle, mulN)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "invalid composite toggle in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	return mul, nil
}

func (p *parser) parseRangeOrComposite(tok string, gtIdx int, colType model.ColumnType) (*operator.Op, error) {
	start, err := p.decodeScalar(tok[:gtIdx], colType)
	if err != nil {
		return nil, err
	}
	rest := tok[gtIdx+1:]
	colonIdx := firstUnescapedIndex(rest, ':')
	starIdx := firstUnescapedIndex(rest, '*')

	var endTok, stepTok, mulTok string
	haveStep := false
	haveMul := false
	switch {
	case colonIdx >= 0 && (starIdx < 0 || colonIdx < starIdx):
		endTok = rest[:colonIdx]
		haveStep = true
		if starIdx >= 0 {
			stepTok = rest[colonIdx+1 : starIdx]
			mulTok = rest[starIdx+1:]
			haveMul = true
		} else {
			stepTok = rest[colonIdx+1:]
		}
	case starIdx >= 0:
		endTok = rest[:starIdx]
		mulTok = rest[starIdx+1:]
		haveMul = true
	default:
		endTok = rest
	}

	end, err := p.decodeScalar(endTok, colType)
	if err != nil {
		return nil, err
	}
	var step model.Value
	if haveStep {
		step, err = p.decodeScalar(stepTok, colType)
		if err != nil {
			return nil, err
		}
	} else {
		step = model.Integer(1)
	}
	rng, err := operator.NewRange(start, end, step, p.maxRangeExpansion())
	if err != nil {
		return nil, alserr.Newf(alserr.CodeRangeOverflow, "invalid range in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	if !haveMul {
		return rng, nil
	}
	n, err := strconv.Atoi(mulTok)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed multiply count in %q", tok).AtOffset(int64(p.pos))
	}
	mul, err := operator.NewMultiply(rng, n)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "invalid composite range in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	return mul, nil
}

func (p *parser) parseMultiplyRaw(tok string, starIdx int, colType model.ColumnType) (*operator.Op, error) {
	v, err := p.decodeScalar(tok[:starIdx], colType)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(tok[starIdx+1:])
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "malformed multiply count in %q", tok).AtOffset(int64(p.pos))
	}
	mul, err := operator.NewMultiply(operator.Raw(v), n)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeAlsSyntax, "invalid multiply in %q: %v", tok, err).AtOffset(int64(p.pos))
	}
	return mul, nil
}

func (p *parser) maxRangeExpansion() int64 {
	if p.opts.MaxRangeExpansion <= 0 {
		return 1_000_000_000
	}
	return p.opts.MaxRangeExpansion
}

// splitOneOrTwoInts parses "N" or "N*M" (the latter meaning a composite
// repeated-toggle count chained onto the toggle's own length).
func splitOneOrTwoInts(s string) (n int, mulN int, err error) {
	idx := firstUnescapedIndex(s, '*')
	if idx < 0 {
		n, err = strconv.Atoi(s)
		return n, 0, err
	}
	n, err = strconv.Atoi(s[:idx])
	if err != nil {
		return 0, 0, err
	}
	mulN, err = strconv.Atoi(s[idx+1:])
	return n, mulN, err
}

func escUnescape(s string, pos int) (string, error) {
	v, err := unescapeWithOffset(s, pos)
	return v, err
}
