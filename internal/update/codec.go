package update

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Decode parses one TDLib-style JSON update object. Unknown update tags
// yield an Unknown event, unknown content kinds an UnsupportedContent.
func Decode(data []byte) (Event, error) {
	obj, err := readObject(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode update")
	}
	typ, err := obj.str("@type")
	if err != nil {
		return nil, errors.Wrap(err, "decode update")
	}

	switch typ {
	case TypeAuthorizationState:
		state, err := obj.object("authorization_state")
		if err != nil {
			return nil, errors.Wrap(err, "decode authorization state")
		}
		tag, err := state.str("@type")
		if err != nil {
			return nil, errors.Wrap(err, "decode authorization state")
		}
		return AuthorizationState{Phase: PhaseFromTag(tag)}, nil

	case TypeServiceNotification:
		kind, _ := obj.optStr("type")
		content, err := decodeContent(obj["content"])
		if err != nil {
			return nil, errors.Wrap(err, "decode service notification")
		}
		return ServiceNotification{Type: kind, Content: content}, nil

	case TypeFatalError:
		msg, _ := obj.optStr("error")
		return FatalError{Error: msg}, nil

	default:
		return Unknown{Type: typ, Raw: append([]byte(nil), data...)}, nil
	}
}

func decodeContent(raw jx.Raw) (MessageContent, error) {
	if raw == nil || raw.Type() != jx.Object {
		return UnsupportedContent{}, nil
	}
	obj, err := readObject(jx.DecodeBytes(raw))
	if err != nil {
		return nil, err
	}
	typ, _ := obj.optStr("@type")
	if typ != ContentTypeText {
		return UnsupportedContent{Type: typ}, nil
	}

	text, ok := obj["text"]
	if !ok || text.Type() != jx.Object {
		return MessageText{}, nil
	}
	ft, err := decodeFormattedText(text)
	if err != nil {
		return nil, errors.Wrap(err, "decode text")
	}
	return MessageText{Text: ft}, nil
}

func decodeFormattedText(raw jx.Raw) (FormattedText, error) {
	obj, err := readObject(jx.DecodeBytes(raw))
	if err != nil {
		return FormattedText{}, err
	}
	if typ, _ := obj.optStr("@type"); typ != TextTypeFormatted {
		return FormattedText{}, nil
	}

	var ft FormattedText
	ft.Text, _ = obj.optStr("text")

	entities, ok := obj["entities"]
	if !ok || entities.Type() != jx.Array {
		return ft, nil
	}
	err = jx.DecodeBytes(entities).Arr(func(d *jx.Decoder) error {
		e, err := readObject(d)
		if err != nil {
			return err
		}
		entity, ok := decodeEntity(e)
		if ok {
			ft.Entities = append(ft.Entities, entity)
		}
		return nil
	})
	if err != nil {
		return FormattedText{}, errors.Wrap(err, "decode entities")
	}
	return ft, nil
}

func decodeEntity(obj object) (TextEntity, bool) {
	offset, err := obj.int("offset")
	if err != nil {
		return TextEntity{}, false
	}
	length, err := obj.int("length")
	if err != nil {
		return TextEntity{}, false
	}
	typ, err := obj.object("type")
	if err != nil {
		return TextEntity{}, false
	}
	tag, _ := typ.optStr("@type")
	kind, ok := entityTags[tag]
	if !ok {
		return TextEntity{}, false
	}

	entity := TextEntity{Offset: offset, Length: length, Kind: kind}
	entity.URL, _ = typ.optStr("url")
	entity.Language, _ = typ.optStr("language")
	return entity, true
}

// DecodeResponse parses a command response object.
func DecodeResponse(data []byte) (Response, error) {
	obj, err := readObject(jx.DecodeBytes(data))
	if err != nil {
		return Response{}, errors.Wrap(err, "decode response")
	}
	var resp Response
	if resp.Type, err = obj.str("@type"); err != nil {
		return Response{}, errors.Wrap(err, "decode response")
	}
	if _, ok := obj["id"]; ok {
		id, err := obj.int64("id")
		if err != nil {
			return Response{}, errors.Wrap(err, "decode response id")
		}
		resp.ID = id
	}
	return resp, nil
}

// Encode renders a command as a TDLib-style JSON object.
func Encode(cmd Command) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("@type")
	e.Str(cmd.CommandType())
	cmd.encodeFields(&e)
	e.ObjEnd()
	return e.Bytes()
}

// object holds the undecoded fields of a JSON object.
type object map[string]jx.Raw

func readObject(d *jx.Decoder) (object, error) {
	if typ := d.Next(); typ != jx.Object {
		return nil, errors.Errorf("expected object, got %v", typ)
	}
	obj := object{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		obj[key] = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (o object) str(key string) (string, error) {
	raw, ok := o[key]
	if !ok {
		return "", errors.Errorf("missing field %q", key)
	}
	s, err := jx.DecodeBytes(raw).Str()
	if err != nil {
		return "", errors.Wrapf(err, "field %q", key)
	}
	return s, nil
}

// optStr is str for fields that may be absent or of another type.
func (o object) optStr(key string) (string, bool) {
	raw, ok := o[key]
	if !ok || raw.Type() != jx.String {
		return "", false
	}
	s, err := jx.DecodeBytes(raw).Str()
	return s, err == nil
}

func (o object) int64(key string) (int64, error) {
	raw, ok := o[key]
	if !ok {
		return 0, errors.Errorf("missing field %q", key)
	}
	// TDLib encodes 64-bit identifiers as strings in some responses.
	d := jx.DecodeBytes(raw)
	if raw.Type() == jx.String {
		s, err := d.Str()
		if err != nil {
			return 0, errors.Wrapf(err, "field %q", key)
		}
		return jx.DecodeStr(s).Int64()
	}
	v, err := d.Int64()
	if err != nil {
		return 0, errors.Wrapf(err, "field %q", key)
	}
	return v, nil
}

func (o object) int(key string) (int, error) {
	v, err := o.int64(key)
	return int(v), err
}

func (o object) object(key string) (object, error) {
	raw, ok := o[key]
	if !ok {
		return nil, errors.Errorf("missing field %q", key)
	}
	obj, err := readObject(jx.DecodeBytes(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", key)
	}
	return obj, nil
}
