package types

// SelectChatMsg asks the shell to change the selected chat. An empty ID clears the selection.
type SelectChatMsg struct {
	ChatID string
}

// AuthStatusMsg carries a new value from the auth status stream.
type AuthStatusMsg struct {
	Status AuthStatus
	// Closed is set when the stream has ended.
	Closed bool
}

// SignedInMsg is emitted by the auth form after a successful sign in.
type SignedInMsg struct{}

// SignedOutMsg is sent once a sign out request has completed.
type SignedOutMsg struct {
	Err error
}
