package favicon

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// LinkExtractor finds icon links in a document, in document order.
type LinkExtractor interface {
	Extract(doc []byte) []Link
}

// NewLinkExtractor returns the extractor registered under name ("regex" or
// "html"). Unknown names fall back to the regex extractor.
func NewLinkExtractor(name string) LinkExtractor {
	if name == "html" {
		return NodeExtractor{}
	}
	return RegexExtractor{}
}

const iconRels = `apple-touch-icon(?:-precomposed)?|msapplication-TileImage|(?:shortcut\s+)?icon`

var (
	linkTag = regexp.MustCompile(`(?i)<link(?:\s[^>]+?)/?>`)
	relAttr = regexp.MustCompile(`(?i)\srel=(?:"(` + iconRels + `)"|'(` + iconRels + `)'|(` + iconRels + `))`)
	// whole attribute value must be an icon rel for the strict extractor
	iconRel = regexp.MustCompile(`(?i)^(?:` + iconRels + `)$`)
)

func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\s` + name + `=(?:"([^\s>"]+)"|'([^\s>']+)'|([^\s>]+))`)
}

var (
	hrefAttr = attrPattern("href")
	typeAttr = attrPattern("type")
)

// hasLinkMarkers is the cheap check run before any pattern matching.
func hasLinkMarkers(doc []byte) bool {
	lower := bytes.ToLower(doc)
	return bytes.Contains(lower, []byte("<link")) &&
		bytes.Contains(lower, []byte("href=")) &&
		bytes.Contains(lower, []byte("rel="))
}

// firstGroup returns the first non-empty submatch.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

// RegexExtractor scans markup with permissive patterns. It tolerates markup a
// real parser would reject.
type RegexExtractor struct{}

func (RegexExtractor) Extract(doc []byte) []Link {
	if !hasLinkMarkers(doc) {
		return nil
	}

	var links []Link
	for _, tag := range linkTag.FindAllString(string(doc), -1) {
		rel := relAttr.FindStringSubmatch(tag)
		if rel == nil {
			continue
		}
		href := hrefAttr.FindStringSubmatch(tag)
		if href == nil {
			continue
		}

		link := Link{Tag: tag, Rel: firstGroup(rel), Href: firstGroup(href)}
		if typ := typeAttr.FindStringSubmatch(tag); typ != nil {
			link.Type = firstGroup(typ)
		}
		links = append(links, link)
	}
	return links
}

// NodeExtractor parses the document into a node tree and reads <link>
// attributes from it.
type NodeExtractor struct{}

func (NodeExtractor) Extract(doc []byte) []Link {
	if !hasLinkMarkers(doc) {
		return nil
	}

	node, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil
	}
	return getLinks(node)
}

// Recursive walk collecting <link /> tags with an icon rel.
func getLinks(node *html.Node) []Link {
	if !(node.Type == html.ElementNode && node.Data == "link") {
		var links []Link
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			links = append(links, getLinks(c)...)
		}
		return links
	}

	link, ok := newLinkFromNode(node)
	if !ok {
		return nil
	}
	return []Link{link}
}

func newLinkFromNode(node *html.Node) (Link, bool) {
	var link Link
	// attributes may appear in any order, collect before deciding
	for _, attr := range node.Attr {
		switch attr.Key {
		case "href":
			link.Href = strings.TrimSpace(attr.Val)
		case "rel":
			value := strings.TrimSpace(attr.Val)
			if iconRel.MatchString(value) {
				link.Rel = value
			}
		case "type":
			link.Type = strings.TrimSpace(attr.Val)
		}
	}

	if link.Rel == "" || link.Href == "" {
		return Link{}, false
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err == nil {
		link.Tag = buf.String()
	}
	return link, true
}
