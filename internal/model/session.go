package model

// SessionState is the session controller's view of the current session.
// The machine starts in SessionSignedOut and has no terminal state.
type SessionState int

const (
	// SessionSignedOut means no identity is present.
	SessionSignedOut SessionState = iota
	// SessionSignedInNoUsername means an identity is present but no
	// username is bound to its account yet.
	SessionSignedInNoUsername
	// SessionSignedInReady means the identity has a bound username.
	SessionSignedInReady
)

func (s SessionState) String() string {
	switch s {
	case SessionSignedOut:
		return "signed_out"
	case SessionSignedInNoUsername:
		return "signed_in_no_username"
	case SessionSignedInReady:
		return "signed_in_ready"
	default:
		return "unknown"
	}
}

// Surface returns the presentation directive for the state: which surface
// a presentation layer should render.
func (s SessionState) Surface() string {
	switch s {
	case SessionSignedInNoUsername:
		return "username_prompt"
	case SessionSignedInReady:
		return "main"
	default:
		return "login"
	}
}
