package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Text in a rule's attribute list means the node's visible text.
const Text = "#text"

// Meta names a document-level value a rule can read instead of a node.
type Meta int

const (
	NoMeta Meta = iota
	// ReadableTitle is the title chosen by the readability algorithm.
	ReadableTitle
	// ReadableExcerpt is readability's summary of the main content.
	ReadableExcerpt
)

// Transform adjusts a raw value before field validation. Returning ""
// rejects the candidate.
type Transform func(string) string

// FieldRule is one candidate location for a field's value.
type FieldRule struct {
	// Selector is the CSS selector locating the node.
	Selector string

	// Attrs is the attribute preference order. Text reads visible text.
	Attrs []string

	// Transform, if set, runs before field normalization.
	Transform Transform

	// Each tries every matching node instead of only the first.
	Each bool

	// Meta, when set, replaces Selector.
	Meta Meta

	sel cascadia.Sel
}

// rule compiles selector and panics on a malformed one; rule tables are
// package-level data so a bad selector fails at init.
func rule(selector string, attrs ...string) FieldRule {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		panic(fmt.Sprintf("extract: bad selector %q: %v", selector, err))
	}
	if len(attrs) == 0 {
		attrs = []string{Text}
	}
	return FieldRule{Selector: selector, Attrs: attrs, sel: sel}
}

// meta is shorthand for a meta tag's content attribute, e.g. meta("property", "og:title").
func meta(attr, value string) FieldRule {
	return rule(fmt.Sprintf(`meta[%s="%s"]`, attr, value), "content")
}

// docMeta builds a rule reading a document-level value.
func docMeta(m Meta) FieldRule {
	return FieldRule{Meta: m}
}

func (r FieldRule) with(t Transform) FieldRule {
	r.Transform = t
	return r
}

func (r FieldRule) each() FieldRule {
	r.Each = true
	return r
}

// nodes returns the nodes the rule inspects, in document order.
func (r FieldRule) nodes(doc *Document, all bool) []*html.Node {
	if r.sel == nil {
		return nil
	}
	if all || r.Each {
		return cascadia.QueryAll(doc.Root, r.sel)
	}
	if n := cascadia.Query(doc.Root, r.sel); n != nil {
		return []*html.Node{n}
	}
	return nil
}

// candidates returns the rule's raw values with its transform applied.
// all forces a scan of every matching node (used for galleries).
func (r FieldRule) candidates(doc *Document, all bool) []string {
	var raw []string
	switch r.Meta {
	case ReadableTitle:
		raw = []string{doc.article().Title}
	case ReadableExcerpt:
		raw = []string{doc.article().Excerpt}
	default:
		for _, n := range r.nodes(doc, all) {
			if v := r.read(doc, n); v != "" {
				raw = append(raw, v)
			}
		}
	}

	out := raw[:0]
	for _, v := range raw {
		if r.Transform != nil {
			v = r.Transform(v)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// read applies the attribute preference order to one node.
func (r FieldRule) read(doc *Document, n *html.Node) string {
	s := doc.selection(n)
	for _, attr := range r.Attrs {
		var v string
		if attr == Text {
			v = collapseSpace(s.Text())
		} else {
			v, _ = s.Attr(attr)
			v = collapseSpace(v)
		}
		if v != "" {
			return v
		}
	}
	return ""
}
