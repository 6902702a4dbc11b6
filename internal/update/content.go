package update

// Content tags.
const (
	ContentTypeText   = "messageText"
	TextTypeFormatted = "formattedText"
)

// MessageContent is the payload of a message or service notification.
type MessageContent interface {
	ContentType() string
	isContent()
}

// MessageText is the only content kind that carries a presentable message.
type MessageText struct {
	Text FormattedText
}

// UnsupportedContent is any content kind this package does not model.
type UnsupportedContent struct {
	Type string
}

func (MessageText) ContentType() string          { return ContentTypeText }
func (c UnsupportedContent) ContentType() string { return c.Type }

func (MessageText) isContent()        {}
func (UnsupportedContent) isContent() {}

// Text returns the plain text of content, or "" when content has no
// presentable text.
func Text(content MessageContent) string {
	if mt, ok := content.(MessageText); ok {
		return mt.Text.Text
	}
	return ""
}

// FormattedText is text with styling entities. Entity offsets and lengths
// are in UTF-16 code units.
type FormattedText struct {
	Text     string
	Entities []TextEntity
}

// EntityKind is the styling applied by a TextEntity.
type EntityKind int

const (
	EntityUnknown EntityKind = iota
	EntityBold
	EntityItalic
	EntityUnderline
	EntityStrike
	EntitySpoiler
	EntityCode
	EntityPre
	EntityURL
	EntityTextURL
	EntityEmail
	EntityMention
	EntityMentionName
	EntityHashtag
	EntityBotCommand
	EntityBlockquote
)

var entityTags = map[string]EntityKind{
	"textEntityTypeBold":          EntityBold,
	"textEntityTypeItalic":        EntityItalic,
	"textEntityTypeUnderline":     EntityUnderline,
	"textEntityTypeStrikethrough": EntityStrike,
	"textEntityTypeSpoiler":       EntitySpoiler,
	"textEntityTypeCode":          EntityCode,
	"textEntityTypePre":           EntityPre,
	"textEntityTypePreCode":       EntityPre,
	"textEntityTypeUrl":           EntityURL,
	"textEntityTypeTextUrl":       EntityTextURL,
	"textEntityTypeEmailAddress":  EntityEmail,
	"textEntityTypeMention":       EntityMention,
	"textEntityTypeMentionName":   EntityMentionName,
	"textEntityTypeHashtag":       EntityHashtag,
	"textEntityTypeBotCommand":    EntityBotCommand,
	"textEntityTypeBlockQuote":    EntityBlockquote,
}

// TextEntity marks a styled range of a FormattedText.
type TextEntity struct {
	Offset   int
	Length   int
	Kind     EntityKind
	URL      string // EntityTextURL
	Language string // EntityPre
}
