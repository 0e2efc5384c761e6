package client

import "sync"

// Guard is the client-side route guard for the VIP and editor areas.
// It only decides what to render; the API enforces access on its own,
// so a bypassed guard still hits 401s server side.
type Guard struct {
	mu             sync.Mutex
	loggedIn       bool
	editorUnlocked bool
}

// SetLoggedIn records the session state, clearing the editor unlock
// on logout.
func (g *Guard) SetLoggedIn(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loggedIn = v
	if !v {
		g.editorUnlocked = false
	}
}

// SetEditorUnlocked records a successful editor password check.
func (g *Guard) SetEditorUnlocked(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.editorUnlocked = v
}

// AllowVip reports whether the VIP area should render.
func (g *Guard) AllowVip() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedIn
}

// AllowEditor reports whether the editor should render; it needs both
// a session and the shared password.
func (g *Guard) AllowEditor() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loggedIn && g.editorUnlocked
}
