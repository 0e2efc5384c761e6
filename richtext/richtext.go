// Package richtext handles the serialized rich-text documents the
// editor stores in NewsPost.Content. The wire format is the raw JSON
// produced by the editor component (blocks plus an entity map); the
// API treats it as opaque, so only the client layer and rendering
// paths ever decode it.
package richtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/bigjohnmusic/bigjohn-api/utils"
)

// Block types understood by the renderer. Unknown types render as paragraphs.
const (
	BlockUnstyled   = "unstyled"
	BlockHeaderOne  = "header-one"
	BlockHeaderTwo  = "header-two"
	BlockBlockquote = "blockquote"
	BlockListItem   = "unordered-list-item"
	BlockAtomic     = "atomic"
)

// Inline style names.
const (
	StyleBold      = "BOLD"
	StyleItalic    = "ITALIC"
	StyleUnderline = "UNDERLINE"
)

// Entity types.
const (
	EntityLink  = "LINK"
	EntityImage = "IMAGE"
)

// StyleRange marks an inline style over [Offset, Offset+Length) of a block's text.
type StyleRange struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Style  string `json:"style"`
}

// EntityRange binds a span of text to an entry of the entity map.
type EntityRange struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
	Key    int `json:"key"`
}

// Block is one editable unit of the document.
type Block struct {
	Key               string            `json:"key"`
	Text              string            `json:"text"`
	Type              string            `json:"type"`
	Depth             int               `json:"depth"`
	InlineStyleRanges []StyleRange      `json:"inlineStyleRanges"`
	EntityRanges      []EntityRange     `json:"entityRanges"`
	Data              map[string]string `json:"data,omitempty"`
}

// Entity is an out-of-band object referenced from block text (links, images).
type Entity struct {
	Type       string            `json:"type"`
	Mutability string            `json:"mutability"`
	Data       map[string]string `json:"data"`
}

// Document is the editable rich-text state.
type Document struct {
	Blocks    []Block           `json:"blocks"`
	EntityMap map[string]Entity `json:"entityMap"`
}

// New returns a single-paragraph document containing text.
func New(text string) Document {
	return Document{
		Blocks:    []Block{{Key: "b0", Text: text, Type: BlockUnstyled}},
		EntityMap: map[string]Entity{},
	}
}

// Serialize encodes the document into its opaque wire form.
func Serialize(doc Document) (string, error) {
	if doc.EntityMap == nil {
		doc.EntityMap = map[string]Entity{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	return string(raw), nil
}

// Deserialize decodes an opaque serialized document back into editable state.
func Deserialize(raw string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, fmt.Errorf("deserialize document: %w", err)
	}
	if doc.Blocks == nil {
		return Document{}, errors.New("deserialize document: missing blocks")
	}
	if doc.EntityMap == nil {
		doc.EntityMap = map[string]Entity{}
	}
	return doc, nil
}

// RenderToMarkup renders the document to sanitized HTML.
func RenderToMarkup(doc Document) string {
	var b strings.Builder
	inList := false
	for _, blk := range doc.Blocks {
		if blk.Type == BlockListItem {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			b.WriteString(renderText(blk, doc.EntityMap))
			b.WriteString("</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		switch blk.Type {
		case BlockHeaderOne:
			b.WriteString("<h1>" + renderText(blk, doc.EntityMap) + "</h1>")
		case BlockHeaderTwo:
			b.WriteString("<h2>" + renderText(blk, doc.EntityMap) + "</h2>")
		case BlockBlockquote:
			b.WriteString("<blockquote>" + renderText(blk, doc.EntityMap) + "</blockquote>")
		case BlockAtomic:
			b.WriteString(renderAtomic(blk, doc.EntityMap))
		default:
			b.WriteString("<p>" + renderText(blk, doc.EntityMap) + "</p>")
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return utils.SanitizeMarkup(b.String())
}

// renderAtomic renders media blocks; today only IMAGE entities exist.
func renderAtomic(blk Block, entities map[string]Entity) string {
	for _, er := range blk.EntityRanges {
		ent, ok := entities[fmt.Sprintf("%d", er.Key)]
		if !ok || ent.Type != EntityImage {
			continue
		}
		if src := ent.Data["src"]; src != "" {
			return `<img src="` + html.EscapeString(src) + `"/>`
		}
	}
	return ""
}

// charSpan is the per-character annotation used to emit nested tags
// without tracking overlapping ranges explicitly.
type charSpan struct {
	bold      bool
	italic    bool
	underline bool
	linkURL   string
}

// renderText applies style and entity ranges to a block. The editor
// measures offsets in UTF-16 code units, so spans are indexed per unit
// and characters above the BMP occupy two slots.
func renderText(blk Block, entities map[string]Entity) string {
	units := utf16.Encode([]rune(blk.Text))
	spans := make([]charSpan, len(units))

	for _, sr := range blk.InlineStyleRanges {
		for i := sr.Offset; i < sr.Offset+sr.Length && i < len(spans); i++ {
			if i < 0 {
				continue
			}
			switch sr.Style {
			case StyleBold:
				spans[i].bold = true
			case StyleItalic:
				spans[i].italic = true
			case StyleUnderline:
				spans[i].underline = true
			}
		}
	}

	ranges := append([]EntityRange(nil), blk.EntityRanges...)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Offset < ranges[j].Offset })
	for _, er := range ranges {
		ent, ok := entities[fmt.Sprintf("%d", er.Key)]
		if !ok || ent.Type != EntityLink {
			continue
		}
		url := ent.Data["url"]
		for i := er.Offset; i < er.Offset+er.Length && i < len(spans); i++ {
			if i >= 0 {
				spans[i].linkURL = url
			}
		}
	}

	var b strings.Builder
	prev := charSpan{}
	for i := 0; i < len(units); {
		r := rune(units[i])
		width := 1
		if utf16.IsSurrogate(r) && i+1 < len(units) {
			r = utf16.DecodeRune(r, rune(units[i+1]))
			width = 2
		}
		cur := spans[i]
		writeBoundary(&b, prev, cur)
		b.WriteString(html.EscapeString(string(r)))
		prev = cur
		i += width
	}
	writeBoundary(&b, prev, charSpan{})
	return b.String()
}

// writeBoundary closes and reopens tags where adjacent characters differ.
// Tag order is fixed (a, strong, em, u) so nesting stays well-formed.
func writeBoundary(b *strings.Builder, prev, cur charSpan) {
	if prev == cur {
		return
	}
	if prev.underline {
		b.WriteString("</u>")
	}
	if prev.italic {
		b.WriteString("</em>")
	}
	if prev.bold {
		b.WriteString("</strong>")
	}
	if prev.linkURL != "" {
		b.WriteString("</a>")
	}
	if cur.linkURL != "" {
		b.WriteString(`<a href="` + html.EscapeString(cur.linkURL) + `">`)
	}
	if cur.bold {
		b.WriteString("<strong>")
	}
	if cur.italic {
		b.WriteString("<em>")
	}
	if cur.underline {
		b.WriteString("<u>")
	}
}
