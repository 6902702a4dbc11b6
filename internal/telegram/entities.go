package telegram

import (
	"github.com/gotd/td/tg"

	"github.com/danhigham/tgshell/internal/update"
)

// formattedText pairs Telegram message text with its entities.
func formattedText(text string, entities []tg.MessageEntityClass) update.FormattedText {
	return update.FormattedText{Text: text, Entities: convertEntities(entities)}
}

// convertEntities maps Telegram entities to update entities. Kinds without
// a mapping are dropped.
func convertEntities(entities []tg.MessageEntityClass) []update.TextEntity {
	if len(entities) == 0 {
		return nil
	}
	out := make([]update.TextEntity, 0, len(entities))
	for _, e := range entities {
		te := update.TextEntity{Offset: e.GetOffset(), Length: e.GetLength()}
		switch e := e.(type) {
		case *tg.MessageEntityBold:
			te.Kind = update.EntityBold
		case *tg.MessageEntityItalic:
			te.Kind = update.EntityItalic
		case *tg.MessageEntityUnderline:
			te.Kind = update.EntityUnderline
		case *tg.MessageEntityStrike:
			te.Kind = update.EntityStrike
		case *tg.MessageEntitySpoiler:
			te.Kind = update.EntitySpoiler
		case *tg.MessageEntityCode:
			te.Kind = update.EntityCode
		case *tg.MessageEntityPre:
			te.Kind = update.EntityPre
			te.Language = e.Language
		case *tg.MessageEntityURL:
			te.Kind = update.EntityURL
		case *tg.MessageEntityTextURL:
			te.Kind = update.EntityTextURL
			te.URL = e.URL
		case *tg.MessageEntityEmail:
			te.Kind = update.EntityEmail
		case *tg.MessageEntityMention:
			te.Kind = update.EntityMention
		case *tg.MessageEntityMentionName:
			te.Kind = update.EntityMentionName
		case *tg.MessageEntityHashtag:
			te.Kind = update.EntityHashtag
		case *tg.MessageEntityBotCommand:
			te.Kind = update.EntityBotCommand
		case *tg.MessageEntityBlockquote:
			te.Kind = update.EntityBlockquote
		default:
			continue
		}
		out = append(out, te)
	}
	return out
}

// serviceNotification converts a Telegram service notification update.
// Notifications without text carry unsupported content.
func serviceNotification(u *tg.UpdateServiceNotification) update.ServiceNotification {
	sn := update.ServiceNotification{Type: u.Type}
	if u.Message == "" {
		sn.Content = update.UnsupportedContent{Type: mediaType(u.Media)}
		return sn
	}
	sn.Content = update.MessageText{Text: formattedText(u.Message, u.Entities)}
	return sn
}

func mediaType(m tg.MessageMediaClass) string {
	if m == nil {
		return ""
	}
	return m.TypeName()
}
