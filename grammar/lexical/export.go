package lexical

import (
	"fmt"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
)

// ExportLexSpec converts the scanner rules into a maleeni lexical specification. Helper rules
// become fragments. A difference has no pattern equivalent and is rejected.
func ExportLexSpec(s *LexSpec) (*mlspec.LexSpec, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if _, err := Expand(s); err != nil {
		return nil, err
	}
	ex := &exporter{
		spec: s,
	}
	var entries []*mlspec.LexEntry
	for _, r := range s.Rules {
		pat, err := ex.pattern(r.Expr)
		if err != nil {
			return nil, &verr.SpecError{
				Code:   verr.CodeInvalidOption,
				Cause:  err,
				Detail: r.Name,
				Row:    r.Row,
				Col:    r.Col,
			}
		}
		entries = append(entries, &mlspec.LexEntry{
			Kind:     mlspec.LexKindName(r.Name),
			Pattern:  mlspec.LexPattern(pat),
			Fragment: r.Helper,
		})
	}
	return &mlspec.LexSpec{
		Entries: entries,
	}, nil
}

type exporter struct {
	spec *LexSpec
}

func (ex *exporter) pattern(x grammar.Expr) (string, error) {
	switch x := x.(type) {
	case *grammar.Range:
		if x.Lo == x.Hi {
			return charPattern(x.Lo), nil
		}
		return fmt.Sprintf("[%v-%v]", codePoint(x.Lo), codePoint(x.Hi)), nil
	case *grammar.Sequence:
		if len(x.Items) == 0 {
			return "", lexErrNoPattern
		}
		var b strings.Builder
		for _, item := range x.Items {
			p, err := ex.pattern(item)
			if err != nil {
				return "", err
			}
			b.WriteString(p)
		}
		return b.String(), nil
	case *grammar.Choice:
		var alts []string
		optional := false
		for _, item := range x.Items {
			if seq, ok := item.(*grammar.Sequence); ok && len(seq.Items) == 0 {
				optional = true
				continue
			}
			p, err := ex.pattern(item)
			if err != nil {
				return "", err
			}
			alts = append(alts, p)
		}
		if len(alts) == 0 {
			return "", lexErrNoPattern
		}
		p := "(" + strings.Join(alts, "|") + ")"
		if optional {
			p += "?"
		}
		return p, nil
	case *grammar.Loop:
		body, err := ex.pattern(x.Body)
		if err != nil {
			return "", err
		}
		return "(" + body + ")+", nil
	case *grammar.Symbol:
		r, ok := ex.spec.rule(x.ID)
		if !ok {
			return "", lexErrUnknownRule
		}
		if r.Helper {
			return fmt.Sprintf(`\f{%v}`, r.Name), nil
		}
		// maleeni fragments cannot refer to terminals, so terminals are inlined.
		p, err := ex.pattern(r.Expr)
		if err != nil {
			return "", err
		}
		return "(" + p + ")", nil
	case *grammar.Without:
		return "", lexErrNoPattern
	}
	return "", fmt.Errorf("unknown expression: %T", x)
}

func charPattern(c rune) string {
	if c < 0x20 || c == 0x7f {
		return codePoint(c)
	}
	return mlspec.EscapePattern(string(c))
}

func codePoint(c rune) string {
	if c > 0xffff {
		return fmt.Sprintf(`\u{%06X}`, c)
	}
	return fmt.Sprintf(`\u{%04X}`, c)
}
