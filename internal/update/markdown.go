package update

import (
	"sort"
	"strings"
	"unicode/utf16"
)

// wrap is the markdown to place around one entity's range.
type wrap struct {
	start, end int // UTF-16 code units
	open       string
	close      string
}

// edge is one side of a wrap positioned in the text.
type edge struct {
	pos   int
	text  string
	open  bool
	order int
}

// Markdown renders the text with its entities as markdown suitable for
// glamour. Entities of unknown kind are left out.
func (t FormattedText) Markdown() string {
	if len(t.Entities) == 0 {
		return t.Text
	}

	units := utf16.Encode([]rune(t.Text))

	wraps := make([]wrap, 0, len(t.Entities))
	for _, e := range t.Entities {
		w, ok := wrapFor(units, e)
		if ok {
			wraps = append(wraps, w)
		}
	}
	if len(wraps) == 0 {
		return t.Text
	}

	// Outer entities first so inner ones close before them.
	sort.SliceStable(wraps, func(i, j int) bool {
		if wraps[i].start != wraps[j].start {
			return wraps[i].start < wraps[j].start
		}
		return wraps[i].end-wraps[i].start > wraps[j].end-wraps[j].start
	})

	edges := make([]edge, 0, 2*len(wraps))
	for i, w := range wraps {
		edges = append(edges,
			edge{pos: w.start, text: w.open, open: true, order: i},
			edge{pos: w.end, text: w.close, open: false, order: i},
		)
	}
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.pos != b.pos {
			return a.pos < b.pos
		}
		if a.open != b.open {
			return !a.open
		}
		if !a.open {
			return a.order > b.order
		}
		return a.order < b.order
	})

	var b strings.Builder
	next := 0
	for i := 0; i <= len(units); i++ {
		for next < len(edges) && edges[next].pos == i {
			b.WriteString(edges[next].text)
			next++
		}
		if i == len(units) {
			break
		}
		u := rune(units[i])
		if utf16.IsSurrogate(u) {
			if i+1 < len(units) {
				b.WriteRune(utf16.DecodeRune(u, rune(units[i+1])))
				i++
			}
			continue
		}
		b.WriteRune(u)
	}
	return b.String()
}

func wrapFor(units []uint16, e TextEntity) (wrap, bool) {
	start := e.Offset
	end := e.Offset + e.Length
	if start < 0 || start > len(units) || e.Length < 0 {
		return wrap{}, false
	}
	if end > len(units) {
		end = len(units)
	}
	w := wrap{start: start, end: end}

	switch e.Kind {
	case EntityBold, EntityMention, EntityMentionName, EntityHashtag:
		w.open, w.close = "**", "**"
	case EntityItalic, EntityUnderline:
		w.open, w.close = "*", "*"
	case EntityCode, EntityBotCommand:
		w.open, w.close = "`", "`"
	case EntityPre:
		w.open, w.close = "```"+e.Language+"\n", "\n```"
	case EntityStrike:
		w.open, w.close = "~~", "~~"
	case EntitySpoiler:
		w.open, w.close = "||", "||"
	case EntityTextURL:
		w.open, w.close = "[", "]("+e.URL+")"
	case EntityURL:
		w.open, w.close = "[", "]("+string(utf16.Decode(units[start:end]))+")"
	case EntityEmail:
		w.open, w.close = "[", "](mailto:"+string(utf16.Decode(units[start:end]))+")"
	case EntityBlockquote:
		w.open = "> "
	default:
		return wrap{}, false
	}
	return w, true
}
