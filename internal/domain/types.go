package domain

import "time"

type ChatInfo struct {
	ID          int64
	Title       string
	UnreadCount int
	LastMessage string
	LastTime    time.Time
	Private     bool        // true for one-to-one chats; ID is then the user ID
	Peer        interface{} // holds tg.InputPeerClass for sending
}

type Message struct {
	ID          int
	ChatID      int64
	SenderName  string
	SenderID    int64
	Text        string
	HasMarkdown bool // true if Text contains markdown from Telegram entities
	Timestamp   time.Time
	Out         bool // true if sent by us
}

// AuthPhase is the backend-defined stage of the login/session lifecycle.
type AuthPhase int

const (
	AuthPhaseUnknown AuthPhase = iota
	AuthPhaseWaitTdlibParameters
	AuthPhaseWaitEncryptionKey
	AuthPhaseWaitPhoneNumber
	AuthPhaseWaitCode
	AuthPhaseWaitPassword
	AuthPhaseReady
	AuthPhaseLoggingOut
	AuthPhaseClosing
	AuthPhaseClosed
)

var authPhaseNames = [...]string{
	AuthPhaseUnknown:             "unknown",
	AuthPhaseWaitTdlibParameters: "wait parameters",
	AuthPhaseWaitEncryptionKey:   "wait encryption key",
	AuthPhaseWaitPhoneNumber:     "wait phone number",
	AuthPhaseWaitCode:            "wait code",
	AuthPhaseWaitPassword:        "wait password",
	AuthPhaseReady:               "ready",
	AuthPhaseLoggingOut:          "logging out",
	AuthPhaseClosing:             "closing",
	AuthPhaseClosed:              "closed",
}

func (p AuthPhase) String() string {
	if p < 0 || int(p) >= len(authPhaseNames) {
		return "unrecognized"
	}
	return authPhaseNames[p]
}

// Interactive reports whether the session is in a state worth registering
// for background delivery.
func (p AuthPhase) Interactive() bool {
	switch p {
	case AuthPhaseReady, AuthPhaseWaitCode, AuthPhaseWaitPassword, AuthPhaseWaitPhoneNumber:
		return true
	}
	return false
}

// ViewKind is the top-level presentation mode.
type ViewKind int

const (
	ViewMain ViewKind = iota
	ViewAuthentication
	ViewInactive
)

func (k ViewKind) String() string {
	switch k {
	case ViewAuthentication:
		return "authentication"
	case ViewInactive:
		return "inactive"
	default:
		return "main"
	}
}

// MediaViewerContent identifies what the viewer overlay shows.
type MediaViewerContent struct {
	ChatID    int64
	MessageID int
}
