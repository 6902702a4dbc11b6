package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/danhigham/tgshell/internal/domain"
)

// transcript lays out messages as text: a separator per calendar day and
// one entry per message. Markdown goes through glamour when a renderer is
// set.
type transcript struct {
	markdown *glamour.TermRenderer
}

func newMarkdownRenderer(wrap int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(wrap, 10)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (t transcript) render(msgs []domain.Message, typingUser string) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i == 0 || !sameDay(msgs[i-1].Timestamp, msg.Timestamp) {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(daySeparatorStyle.Render("───── " + msg.Timestamp.Format("January 2, 2006") + " ─────"))
			b.WriteByte('\n')
		}
		b.WriteString(t.entry(msg))
	}
	if typingUser != "" {
		b.WriteByte('\n')
		b.WriteString(typingStyle.Render(typingUser + " is typing..."))
	}
	return b.String()
}

// entry puts a one-line text next to its header and anything longer
// below it, followed by a blank line.
func (t transcript) entry(msg domain.Message) string {
	nameStyle := inNameStyle
	if msg.Out {
		nameStyle = outNameStyle
	}
	header := timeStyle.Render(msg.Timestamp.Format("15:04")) + " " + nameStyle.Render(senderLabel(msg)+":")

	body := msg.Text
	if msg.HasMarkdown {
		return header + "\n" + t.renderMarkdown(body) + "\n\n"
	}
	if strings.Contains(body, "\n") {
		return header + "\n" + body + "\n\n"
	}
	return header + " " + body + "\n"
}

// renderMarkdown renders each segment of text on its own so glamour does
// not fold the line breaks of a chat message into paragraphs.
func (t transcript) renderMarkdown(text string) string {
	if t.markdown == nil {
		return text
	}
	segments := markdownSegments(text)
	out := make([]string, len(segments))
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		r, err := t.markdown.Render(seg)
		if err != nil {
			out[i] = seg
			continue
		}
		out[i] = strings.Trim(r, "\n ")
	}
	return strings.Join(out, "\n")
}

// markdownSegments splits text into units glamour must see whole: a fenced
// code block up to its closing fence, a run of table rows, or a single
// line. Blank lines become empty segments.
func markdownSegments(text string) []string {
	lines := strings.Split(text, "\n")
	var segments []string
	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		end := i + 1
		switch {
		case strings.HasPrefix(line, "```"):
			for end < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[end]), "```") {
				end++
			}
			end = min(end+1, len(lines))
		case strings.HasPrefix(line, "|"):
			for end < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[end]), "|") {
				end++
			}
		}
		segments = append(segments, strings.Join(lines[i:end], "\n"))
		i = end
	}
	return segments
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// senderLabel names who wrote msg when the sender has no cached name.
func senderLabel(msg domain.Message) string {
	switch {
	case msg.SenderName != "":
		return msg.SenderName
	case msg.Out:
		return "You"
	case msg.SenderID != 0:
		return fmt.Sprintf("User %d", msg.SenderID)
	default:
		return "Unknown"
	}
}
