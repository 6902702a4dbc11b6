// Package update models the tagged messages exchanged with the backend
// engine: inbound update events, message content, outbound commands and
// their responses.
//
// Every family is a closed set of variants. Tags the package does not know
// decode to an explicit unknown variant instead of an error so that callers
// can treat them as no-ops while the backend vocabulary grows.
package update

import "github.com/danhigham/tgshell/internal/domain"

// Event tags.
const (
	TypeAuthorizationState  = "updateAuthorizationState"
	TypeServiceNotification = "updateServiceNotification"
	TypeFatalError          = "updateFatalError"
)

// Event is a single tagged update pushed by the backend.
type Event interface {
	TypeName() string
	isEvent()
}

// AuthorizationState reports the current authorization phase.
type AuthorizationState struct {
	Phase domain.AuthPhase
}

// ServiceNotification is a backend-originated message for the user.
type ServiceNotification struct {
	Type    string
	Content MessageContent
}

// FatalError means the backend cannot continue in this process.
type FatalError struct {
	Error string
}

// Unknown carries an update whose tag is not recognized.
type Unknown struct {
	Type string
	Raw  []byte
}

// AppInactive is raised by a source when another client took over the
// session. It never appears in the tagged stream itself.
type AppInactive struct{}

func (AuthorizationState) TypeName() string  { return TypeAuthorizationState }
func (ServiceNotification) TypeName() string { return TypeServiceNotification }
func (FatalError) TypeName() string          { return TypeFatalError }
func (u Unknown) TypeName() string           { return u.Type }
func (AppInactive) TypeName() string         { return "appInactive" }

func (AuthorizationState) isEvent()  {}
func (ServiceNotification) isEvent() {}
func (FatalError) isEvent()          {}
func (Unknown) isEvent()             {}
func (AppInactive) isEvent()         {}

var phaseTags = map[string]domain.AuthPhase{
	"authorizationStateWaitTdlibParameters": domain.AuthPhaseWaitTdlibParameters,
	"authorizationStateWaitEncryptionKey":   domain.AuthPhaseWaitEncryptionKey,
	"authorizationStateWaitPhoneNumber":     domain.AuthPhaseWaitPhoneNumber,
	"authorizationStateWaitCode":            domain.AuthPhaseWaitCode,
	"authorizationStateWaitPassword":        domain.AuthPhaseWaitPassword,
	"authorizationStateReady":               domain.AuthPhaseReady,
	"authorizationStateLoggingOut":          domain.AuthPhaseLoggingOut,
	"authorizationStateClosing":             domain.AuthPhaseClosing,
	"authorizationStateClosed":              domain.AuthPhaseClosed,
}

// PhaseFromTag maps an authorization state tag to its phase. Unrecognized
// tags map to AuthPhaseUnknown.
func PhaseFromTag(tag string) domain.AuthPhase {
	if p, ok := phaseTags[tag]; ok {
		return p
	}
	return domain.AuthPhaseUnknown
}

// PhaseTag is the inverse of PhaseFromTag. It returns "" for phases without a tag.
func PhaseTag(phase domain.AuthPhase) string {
	for tag, p := range phaseTags {
		if p == phase {
			return tag
		}
	}
	return ""
}
