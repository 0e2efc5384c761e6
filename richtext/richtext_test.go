package richtext

import (
	"strings"
	"testing"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	doc := Document{
		Blocks: []Block{
			{Key: "h", Text: "Show announcement", Type: BlockHeaderOne},
			{
				Key: "p", Text: "Tickets on sale now", Type: BlockUnstyled,
				InlineStyleRanges: []StyleRange{{Offset: 0, Length: 7, Style: StyleBold}},
				EntityRanges:      []EntityRange{{Offset: 11, Length: 8, Key: 0}},
			},
		},
		EntityMap: map[string]Entity{
			"0": {Type: EntityLink, Mutability: "MUTABLE", Data: map[string]string{"url": "https://tickets.example"}},
		},
	}

	raw, err := Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Blocks) != 2 || got.Blocks[0].Text != "Show announcement" {
		t.Errorf("blocks lost in round trip: %+v", got.Blocks)
	}
	if got.EntityMap["0"].Data["url"] != "https://tickets.example" {
		t.Errorf("entity map lost in round trip: %+v", got.EntityMap)
	}
}

func TestDeserializeRejectsMissingBlocks(t *testing.T) {
	for _, raw := range []string{`{}`, `{"entityMap":{}}`, `not json`} {
		if _, err := Deserialize(raw); err == nil {
			t.Errorf("Deserialize(%q) accepted invalid document", raw)
		}
	}
}

func TestNewProducesValidDocument(t *testing.T) {
	raw, err := Serialize(New("hello"))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Deserialize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Text != "hello" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestRenderToMarkup(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want []string
	}{
		{
			name: "bold span",
			doc: Document{Blocks: []Block{{
				Text: "go listen", Type: BlockUnstyled,
				InlineStyleRanges: []StyleRange{{Offset: 3, Length: 6, Style: StyleBold}},
			}}},
			want: []string{"<p>go <strong>listen</strong></p>"},
		},
		{
			name: "headers and blockquote",
			doc: Document{Blocks: []Block{
				{Text: "Title", Type: BlockHeaderOne},
				{Text: "Sub", Type: BlockHeaderTwo},
				{Text: "quoted", Type: BlockBlockquote},
			}},
			want: []string{"<h1>Title</h1>", "<h2>Sub</h2>", "<blockquote>quoted</blockquote>"},
		},
		{
			name: "consecutive list items share one list",
			doc: Document{Blocks: []Block{
				{Text: "one", Type: BlockListItem},
				{Text: "two", Type: BlockListItem},
				{Text: "after", Type: BlockUnstyled},
			}},
			want: []string{"<ul><li>one</li><li>two</li></ul><p>after</p>"},
		},
		{
			name: "link entity",
			doc: Document{
				Blocks: []Block{{
					Text: "tickets", Type: BlockUnstyled,
					EntityRanges: []EntityRange{{Offset: 0, Length: 7, Key: 0}},
				}},
				EntityMap: map[string]Entity{
					"0": {Type: EntityLink, Data: map[string]string{"url": "https://t.example"}},
				},
			},
			want: []string{`<a href="https://t.example"`, `tickets</a>`},
		},
		{
			name: "text is escaped",
			doc: Document{Blocks: []Block{{
				Text: "1 < 2 & cool", Type: BlockUnstyled,
			}}},
			want: []string{"1 &lt; 2 &amp; cool"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderToMarkup(tt.doc)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("markup %q missing %q", got, want)
				}
			}
		})
	}
}

func TestRenderOffsetsAreUTF16Units(t *testing.T) {
	// The editor counts the guitar emoji as two units: offset 3 is the
	// "r" of "rock", not the "o" a rune count would land on.
	doc := Document{
		Blocks: []Block{{
			Text: "\U0001F3B8 rock", Type: BlockUnstyled,
			InlineStyleRanges: []StyleRange{{Offset: 3, Length: 4, Style: StyleBold}},
		}},
	}
	got := RenderToMarkup(doc)
	if !strings.Contains(got, "<strong>rock</strong>") {
		t.Errorf("markup %q, want the whole word bolded", got)
	}
	if !strings.Contains(got, "\U0001F3B8") {
		t.Errorf("markup %q lost the emoji", got)
	}

	linked := Document{
		Blocks: []Block{{
			Text: "\U0001F3B8 tickets", Type: BlockUnstyled,
			EntityRanges: []EntityRange{{Offset: 3, Length: 7, Key: 0}},
		}},
		EntityMap: map[string]Entity{
			"0": {Type: EntityLink, Data: map[string]string{"url": "https://t.example"}},
		},
	}
	got = RenderToMarkup(linked)
	if !strings.Contains(got, ">tickets</a>") {
		t.Errorf("markup %q, want the whole word linked", got)
	}
}

func TestRenderOverlappingStyles(t *testing.T) {
	doc := Document{Blocks: []Block{{
		Text: "abcd", Type: BlockUnstyled,
		InlineStyleRanges: []StyleRange{
			{Offset: 0, Length: 3, Style: StyleBold},
			{Offset: 1, Length: 3, Style: StyleItalic},
		},
	}}}
	got := RenderToMarkup(doc)
	// a: bold, bc: bold+italic, d: italic
	for _, want := range []string{"<strong>a", "<em>", "d</em>"} {
		if !strings.Contains(got, want) {
			t.Errorf("markup %q missing %q", got, want)
		}
	}
}
