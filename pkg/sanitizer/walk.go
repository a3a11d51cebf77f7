package sanitizer

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/pawcraft/contentguard/pkg/policy"
)

// alwaysStrip are element families that are removed with their entire
// subtree no matter what the policy allows. Script and style bodies are
// raw text to the parser and must never leak into output.
var alwaysStrip = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"iframe": true, "frame": true, "frameset": true,
	"object": true, "embed": true, "applet": true,
	"form": true, "input": true, "button": true, "select": true, "textarea": true,
	"head": true, "title": true, "meta": true, "link": true, "base": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// urlAttributes are attribute names whose values carry URLs and go
// through the scheme check.
var urlAttributes = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"poster": true, "background": true, "cite": true,
}

type walkOutcome struct {
	output            string
	removedElements   map[string]bool
	removedAttributes map[string]bool
	depthExceeded     bool
}

// applyPolicy parses raw, walks the tree applying the policy allow-list,
// and re-serializes the surviving structure. Disallowed elements are
// stripped with their subtree, except unwrap-listed tags under
// non-strict policies, which are flattened (tag dropped, children kept).
func applyPolicy(raw string, pol policy.Policy, maxDepth int) walkOutcome {
	out := walkOutcome{
		removedElements:   make(map[string]bool),
		removedAttributes: make(map[string]bool),
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// The parser only fails on reader errors, which a string reader
		// cannot produce; treat a failure as fully hostile input.
		return out
	}

	var buf strings.Builder
	var walk func(n *html.Node, depth int)

	walk = func(n *html.Node, depth int) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(escapeText(n.Data))

		case html.ElementNode:
			tag := strings.ToLower(n.Data)

			if maxDepth > 0 && depth > maxDepth {
				out.depthExceeded = true
				out.removedElements[tag] = true
				return
			}
			if alwaysStrip[tag] {
				out.removedElements[tag] = true
				return
			}

			if !pol.TagAllowed(tag) {
				out.removedElements[tag] = true
				if pol.UnwrapsDisallowed() && pol.UnwrapTags[tag] {
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						walk(c, depth+1)
					}
				}
				return
			}

			attrs := filterAttributes(n.Attr, tag, pol, &out)

			buf.WriteByte('<')
			buf.WriteString(tag)
			for _, a := range attrs {
				buf.WriteByte(' ')
				buf.WriteString(a.Key)
				buf.WriteString(`="`)
				buf.WriteString(escapeAttr(a.Val))
				buf.WriteByte('"')
			}
			if voidElements[tag] {
				buf.WriteString("/>")
				return
			}
			buf.WriteByte('>')
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, depth+1)
			}
			buf.WriteString("</")
			buf.WriteString(tag)
			buf.WriteByte('>')

		case html.CommentNode, html.DoctypeNode:
			// dropped

		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, depth)
			}
		}
	}

	// html.Parse wraps fragments in <html><head><body>; walk body content.
	if body := findBody(doc); body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			walk(c, 1)
		}
	} else {
		walk(doc, 0)
	}

	out.output = buf.String()
	return out
}

func filterAttributes(attrs []html.Attribute, tag string, pol policy.Policy, out *walkOutcome) []html.Attribute {
	kept := attrs[:0:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") || key == "srcdoc" {
			out.removedAttributes[key] = true
			continue
		}
		if !pol.AttrAllowed(tag, key) {
			out.removedAttributes[key] = true
			continue
		}
		if urlAttributes[key] && !schemeAllowed(a.Val, pol.AllowedSchemes) {
			out.removedAttributes[key] = true
			continue
		}
		kept = append(kept, html.Attribute{Key: key, Val: a.Val})
	}
	return kept
}

// schemeAllowed checks a URL attribute value against the policy scheme
// allow-list. The parser has already decoded entities in attribute
// values; control characters are stripped before reading the scheme so
// "jav\tascript:" cannot slip through. Relative URLs are allowed.
func schemeAllowed(raw string, schemes map[string]bool) bool {
	v := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	v = strings.ToLower(v)

	idx := strings.IndexByte(v, ':')
	if idx < 0 {
		return true
	}
	scheme := v[:idx]
	if strings.ContainsAny(scheme, "/?#") {
		// Path-relative URL containing a colon later on.
		return true
	}
	return schemes[scheme]
}

func findBody(doc *html.Node) *html.Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if r := find(c); r != nil {
				return r
			}
		}
		return nil
	}
	return find(doc)
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
