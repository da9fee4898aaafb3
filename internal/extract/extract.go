// ABOUTME: Best-effort field extraction from semi-structured markup using regular expressions
// ABOUTME: Pulls tag text, attribute values and entity-decoded text without building a DOM

// Package extract holds the string-level primitives shared by the feed and
// listing-page parsers. Every function is total: malformed or truncated markup
// yields an empty or partial result, never an error or a panic.
//
// Known limitations: nested tags with the same name match the first closing
// tag, attribute values containing the opposite quote character are cut short,
// and only five HTML entities are decoded.
package extract

import (
	"regexp"
	"strings"
	"sync"
)

var (
	cdataPattern  = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	markupPattern = regexp.MustCompile(`<[^>]*>`)

	// compiled per tag/attr pair, keyed by a string like "text:title"
	patternCache sync.Map
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// TagText returns the inner text of the first <tag ...>...</tag> in fragment.
// Matching is case-insensitive and tolerates attributes on the opening tag.
// CDATA markers are removed and the result is trimmed. A self-closing tag
// (<tag/>) never matches. Returns "" when the tag is absent.
func TagText(fragment, tag string) string {
	if fragment == "" || tag == "" {
		return ""
	}
	m := tagTextPattern(tag).FindStringSubmatch(fragment)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(StripCDATA(strings.TrimSpace(m[1])))
}

// Attr returns the value of attr on the first <tag ...> element that carries
// it with a non-empty value. Double and single quotes are accepted.
// Returns "" when no such element exists.
func Attr(fragment, tag, attr string) string {
	if fragment == "" || tag == "" || attr == "" {
		return ""
	}
	m := attrPattern(tag, attr).FindStringSubmatch(fragment)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// Blocks returns every <tag ...>...</tag> element in doc, in document order.
func Blocks(doc, tag string) []string {
	if doc == "" || tag == "" {
		return nil
	}
	return blockPattern(tag).FindAllString(doc, -1)
}

// ClassBlocks returns every <tag ...>...</tag> element in doc whose own
// opening tag has a class attribute containing marker. Unmarked elements of
// the same name, closed or not, never start a block.
func ClassBlocks(doc, tag, marker string) []string {
	if doc == "" || tag == "" || marker == "" {
		return nil
	}
	return classBlockPattern(tag, marker).FindAllString(doc, -1)
}

// ClassText returns the inner markup of the first element whose class
// attribute contains marker. The element ends at the first closing tag of the
// same name. Returns "" when no element carries the marker.
func ClassText(fragment, marker string) string {
	if fragment == "" || marker == "" {
		return ""
	}
	loc := classPattern(marker).FindStringSubmatchIndex(fragment)
	if loc == nil {
		return ""
	}
	return TagText(fragment[loc[0]:], fragment[loc[2]:loc[3]])
}

// StripCDATA unwraps every <![CDATA[...]]> section, keeping its content.
func StripCDATA(s string) string {
	if !strings.Contains(s, "<![CDATA[") {
		return s
	}
	return cdataPattern.ReplaceAllString(s, "$1")
}

// DecodeEntities reverses &amp; &quot; &#39; &lt; and &gt;.
// Other entities are left untouched.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// StripMarkup removes every tag, leaving the concatenated text content.
func StripMarkup(s string) string {
	return markupPattern.ReplaceAllString(s, "")
}

// CleanText strips markup, decodes entities and collapses whitespace.
func CleanText(s string) string {
	return strings.Join(strings.Fields(DecodeEntities(StripMarkup(StripCDATA(s)))), " ")
}

func tagTextPattern(tag string) *regexp.Regexp {
	t := regexp.QuoteMeta(tag)
	return cachedPattern("text:"+tag, `(?is)<`+t+`\b(?:[^>]*[^/>])?>(.*?)</`+t+`\s*>`)
}

func attrPattern(tag, attr string) *regexp.Regexp {
	t, a := regexp.QuoteMeta(tag), regexp.QuoteMeta(attr)
	return cachedPattern("attr:"+tag+":"+attr, `(?is)<`+t+`\b[^>]*?\s`+a+`\s*=\s*(?:"([^"]+)"|'([^']+)')`)
}

func blockPattern(tag string) *regexp.Regexp {
	t := regexp.QuoteMeta(tag)
	return cachedPattern("block:"+tag, `(?is)<`+t+`\b[^>]*>.*?</`+t+`\s*>`)
}

func classBlockPattern(tag, marker string) *regexp.Regexp {
	t, m := regexp.QuoteMeta(tag), regexp.QuoteMeta(marker)
	return cachedPattern("classblock:"+tag+":"+marker,
		`(?is)<`+t+`\b[^>]*?\sclass\s*=\s*["'][^"'>]*`+m+`[^"'>]*["'][^>]*>.*?</`+t+`\s*>`)
}

func classPattern(marker string) *regexp.Regexp {
	m := regexp.QuoteMeta(marker)
	return cachedPattern("class:"+marker, `(?is)<([a-z][a-z0-9]*)\b[^>]*?\sclass\s*=\s*["'][^"'>]*`+m+`[^"'>]*["'][^>]*>`)
}

func cachedPattern(key, expr string) *regexp.Regexp {
	if re, ok := patternCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	patternCache.Store(key, re)
	return re
}
