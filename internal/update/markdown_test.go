package update

import "testing"

func TestMarkdown_NoEntities(t *testing.T) {
	ft := FormattedText{Text: "Hello world"}
	if got := ft.Markdown(); got != "Hello world" {
		t.Errorf("Markdown() = %q, want %q", got, "Hello world")
	}
}

func TestMarkdown_SingleEntity(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		entity TextEntity
		want   string
	}{
		{"bold", "Hello world", TextEntity{Offset: 6, Length: 5, Kind: EntityBold}, "Hello **world**"},
		{"italic", "Hello world", TextEntity{Offset: 6, Length: 5, Kind: EntityItalic}, "Hello *world*"},
		{"code", "Use fmt.Println here", TextEntity{Offset: 4, Length: 11, Kind: EntityCode}, "Use `fmt.Println` here"},
		{"pre", "func main() {}", TextEntity{Offset: 0, Length: 14, Kind: EntityPre, Language: "go"}, "```go\nfunc main() {}\n```"},
		{"strike", "Hello world", TextEntity{Offset: 6, Length: 5, Kind: EntityStrike}, "Hello ~~world~~"},
		{"text url", "Click here for info", TextEntity{Offset: 6, Length: 4, Kind: EntityTextURL, URL: "https://example.com"}, "Click [here](https://example.com) for info"},
		{"url", "Visit https://example.com today", TextEntity{Offset: 6, Length: 19, Kind: EntityURL}, "Visit [https://example.com](https://example.com) today"},
		{"bot command", "Type /start to begin", TextEntity{Offset: 5, Length: 6, Kind: EntityBotCommand}, "Type `/start` to begin"},
		{"blockquote", "This is quoted", TextEntity{Offset: 0, Length: 14, Kind: EntityBlockquote}, "> This is quoted"},
		{"email", "Email me at user@example.com", TextEntity{Offset: 12, Length: 16, Kind: EntityEmail}, "Email me at [user@example.com](mailto:user@example.com)"},
		{"mention", "Hey @johndoe check this", TextEntity{Offset: 4, Length: 8, Kind: EntityMention}, "Hey **@johndoe** check this"},
		{"unknown kind", "Hello world", TextEntity{Offset: 0, Length: 5, Kind: EntityUnknown}, "Hello world"},
		{"out of range", "abc", TextEntity{Offset: 10, Length: 2, Kind: EntityBold}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := FormattedText{Text: tt.text, Entities: []TextEntity{tt.entity}}
			if got := ft.Markdown(); got != tt.want {
				t.Errorf("Markdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdown_MultipleEntities(t *testing.T) {
	ft := FormattedText{
		Text: "Hello bold and italic world",
		Entities: []TextEntity{
			{Offset: 6, Length: 4, Kind: EntityBold},
			{Offset: 15, Length: 6, Kind: EntityItalic},
		},
	}
	want := "Hello **bold** and *italic* world"
	if got := ft.Markdown(); got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestMarkdown_Nested(t *testing.T) {
	ft := FormattedText{
		Text: "Hello world",
		Entities: []TextEntity{
			{Offset: 6, Length: 5, Kind: EntityItalic},
			{Offset: 0, Length: 11, Kind: EntityBold},
		},
	}
	want := "**Hello *world***"
	if got := ft.Markdown(); got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestMarkdown_SurrogatePairs(t *testing.T) {
	// U+1F44B takes two UTF-16 code units, so "world" starts at 9.
	ft := FormattedText{
		Text:     "Hello \U0001F44B world",
		Entities: []TextEntity{{Offset: 9, Length: 5, Kind: EntityBold}},
	}
	want := "Hello \U0001F44B **world**"
	if got := ft.Markdown(); got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}
