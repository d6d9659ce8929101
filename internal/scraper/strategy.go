package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractFunc is one attempt at pulling a field out of the page tree. It
// returns the value and whether the attempt produced anything usable.
type extractFunc func(doc *goquery.Document) (string, bool)

// strategy is a named extraction attempt. Strategies never fail loudly; a
// miss just moves the chain along.
type strategy struct {
	name string
	fn   extractFunc
}

// chain is an ordered list of strategies for one field. Order is data, not
// control flow, so it can be inspected and tested directly.
type chain struct {
	field      string
	strategies []strategy
}

// extract runs the strategies in order and returns the first non-empty
// value together with the name of the strategy that produced it. ok is
// false once the chain is exhausted.
func (c chain) extract(doc *goquery.Document) (value, strategyName string, ok bool) {
	for _, s := range c.strategies {
		v, hit := s.fn(doc)
		v = strings.TrimSpace(v)
		if hit && v != "" {
			return v, s.name, true
		}
	}
	return "", "", false
}

// selectorText returns a strategy reading the trimmed text of the first
// element matching selector.
func selectorText(name, selector string) strategy {
	return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(sel.Text()), true
	}}
}

// selectorAttr returns a strategy reading an attribute of the first
// element matching selector. The value is returned verbatim.
func selectorAttr(name, selector, attr string) strategy {
	return strategy{name: name, fn: func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return sel.AttrOr(attr, ""), true
	}}
}
