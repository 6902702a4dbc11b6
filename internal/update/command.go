package update

import "github.com/go-faster/jx"

// Command tags.
const (
	CommandSetOption         = "setOption"
	CommandCreatePrivateChat = "createPrivateChat"
	CommandLogOut            = "logOut"
)

// OptionOnline is the option that marks the session online.
const OptionOnline = "online"

// Command is an outbound request to the backend.
type Command interface {
	CommandType() string
	encodeFields(e *jx.Encoder)
}

// OptionValue is the value of a SetOption command.
type OptionValue interface {
	encode(e *jx.Encoder)
}

// OptionBoolean is a boolean option value.
type OptionBoolean struct {
	Value bool
}

// OptionString is a string option value.
type OptionString struct {
	Value string
}

func (v OptionBoolean) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("@type")
	e.Str("optionValueBoolean")
	e.FieldStart("value")
	e.Bool(v.Value)
	e.ObjEnd()
}

func (v OptionString) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("@type")
	e.Str("optionValueString")
	e.FieldStart("value")
	e.Str(v.Value)
	e.ObjEnd()
}

// SetOption sets a process-visible backend option.
type SetOption struct {
	Name  string
	Value OptionValue
}

// SetOnline returns the command that marks the session online or offline.
func SetOnline(online bool) SetOption {
	return SetOption{Name: OptionOnline, Value: OptionBoolean{Value: online}}
}

func (SetOption) CommandType() string { return CommandSetOption }

func (c SetOption) encodeFields(e *jx.Encoder) {
	e.FieldStart("name")
	e.Str(c.Name)
	if c.Value != nil {
		e.FieldStart("value")
		c.Value.encode(e)
	}
}

// CreatePrivateChat returns the private chat with a user, creating it
// when Force is set. The response carries the chat id.
type CreatePrivateChat struct {
	UserID int64
	Force  bool
}

func (CreatePrivateChat) CommandType() string { return CommandCreatePrivateChat }

func (c CreatePrivateChat) encodeFields(e *jx.Encoder) {
	e.FieldStart("user_id")
	e.Int64(c.UserID)
	e.FieldStart("force")
	e.Bool(c.Force)
}

// LogOut tears down the current session.
type LogOut struct{}

func (LogOut) CommandType() string { return CommandLogOut }

func (LogOut) encodeFields(*jx.Encoder) {}

// Response is the backend's answer to a command.
type Response struct {
	Type string
	ID   int64
}

// Ok is the response to commands without a result object.
var Ok = Response{Type: "ok"}
