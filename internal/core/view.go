package core

import "github.com/danhigham/tgshell/internal/domain"

// View is the top-level presentation chosen for the current state.
type View struct {
	Kind domain.ViewKind
	// ChatDetails adds the details column to ViewMain.
	ChatDetails bool
}

// SelectView decides which view to present. Inactivity overrides
// everything; login prompts get the authentication view; every other
// phase, recognized or not, gets the main view.
func SelectView(phase domain.AuthPhase, inactive, chatDetailsVisible bool) View {
	if inactive {
		return View{Kind: domain.ViewInactive}
	}
	switch phase {
	case domain.AuthPhaseWaitCode, domain.AuthPhaseWaitPassword, domain.AuthPhaseWaitPhoneNumber:
		return View{Kind: domain.ViewAuthentication}
	default:
		return View{Kind: domain.ViewMain, ChatDetails: chatDetailsVisible}
	}
}
