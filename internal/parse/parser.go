package parse

import (
	"log/slog"

	"github.com/kwheaton/canvass/internal/entity"
	"github.com/kwheaton/canvass/internal/lexicon"
)

// State is the parser's only memory between lines: the surname ditto marks
// refer back to. The caller owns it, creates it fresh per run, and hands
// the same instance to every page of that run; it is never reset inside a
// run, so carried surnames cross page boundaries.
type State struct {
	LastSurname string
}

// Reset clears the state at a run boundary.
func (s *State) Reset() {
	s.LastSurname = ""
}

// Skip reasons reported by ParseLine.
const (
	SkipEmpty     = "empty"
	SkipNoSurname = "no surname"
)

// Options configures a Parser. Zero values select the embedded lexicon,
// the address-wins tie-break, no span refinement and the default logger.
type Options struct {
	Lexicon    *lexicon.Lexicon
	TieBreak   TieBreak
	Recognizer LocationRecognizer
	Logger     *slog.Logger
}

// Parser wires the line stages together. One Parser serves many lines and
// many runs; all per-run memory lives in State.
type Parser struct {
	log  *slog.Logger
	tok  *Tokenizer
	occ  *Classifier
	addr *AddressExtractor
	name *NameSplitter
}

// NewParser builds a Parser from opts.
func NewParser(opts Options) *Parser {
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Parser{
		log:  opts.Logger,
		tok:  NewTokenizer(opts.Lexicon, opts.TieBreak),
		occ:  NewClassifier(opts.Lexicon),
		addr: NewAddressExtractor(opts.Lexicon, opts.Recognizer),
		name: NewNameSplitter(opts.Lexicon),
	}
}

// ParseLine converts one raw line into a record. ok reports whether a
// record was produced; when false, reason is SkipEmpty or SkipNoSurname.
// Partial extraction is success: a line with a surname but nothing else
// still yields a record with empty fields. The returned record carries
// line provenance only; run and page identity are the pipeline's job.
func (p *Parser) ParseLine(line RawLine, st *State) (rec entity.Record, reason string, ok bool) {
	norm := Normalize(line)
	if norm.IsEmpty() {
		return entity.Record{}, SkipEmpty, false
	}

	var nameSeg, occSeg, addrSeg *Segment
	segs := p.tok.Split(norm)
	for i := range segs {
		switch segs[i].Label {
		case LabelName:
			nameSeg = &segs[i]
		case LabelOccupation:
			occSeg = &segs[i]
		case LabelAddress:
			addrSeg = &segs[i]
		}
	}

	var addr Address
	if addrSeg != nil {
		if a, found := p.addr.Extract(addrSeg.Text); found {
			addr = a
		} else {
			p.log.Debug("parse.segment.unassigned", "label", "address", "text", addrSeg.Text, "line", line.LineNo)
		}
	}

	occupation := ""
	if occSeg != nil {
		canon, remainder, matched := p.occ.Classify(occSeg.Text)
		if matched {
			occupation = canon
			if remainder != "" {
				if addr.Text == "" && addr.Residence == "" {
					if a, found := p.addr.Extract(remainder); found {
						addr = a
						remainder = ""
					}
				}
				if remainder != "" {
					p.log.Debug("parse.remainder.dropped", "text", remainder, "line", line.LineNo)
				}
			}
		} else if addr.Text == "" && addr.Residence == "" {
			if a, found := p.addr.Extract(occSeg.Text); found {
				addr = a
			} else {
				p.log.Debug("parse.segment.unassigned", "label", "occupation", "text", occSeg.Text, "line", line.LineNo)
			}
		}
	}

	nameText := ""
	if nameSeg != nil {
		nameText = nameSeg.Text
	}
	name, found := p.name.Split(nameText, st)
	if !found {
		p.log.Warn("parse.line.skipped", "reason", SkipNoSurname, "raw", line.Text, "line", line.LineNo)
		return entity.Record{}, SkipNoSurname, false
	}

	return assemble(name, occupation, addr, line), "", true
}

// assemble builds the immutable record. Unknown fields stay empty strings,
// never placeholders.
func assemble(n Name, occupation string, addr Address, line RawLine) entity.Record {
	return entity.Record{
		Surname:        n.Surname,
		GivenName:      n.Given,
		Occupation:     occupation,
		HomeAddress:    addr.Text,
		ResidenceType:  addr.Residence,
		SpouseName:     n.Spouse,
		SurnameCarried: n.Carried,
		LineNo:         line.LineNo,
		Raw:            line.Text,
	}
}
