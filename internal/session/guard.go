package session

// Redirect sends the user to another view. Replace means the gated view must
// not stay in navigation history.
type Redirect struct {
	To      string
	Replace bool
}

// Outcome is the result of guarding a view: either the view itself or a
// redirect, never both.
type Outcome[V any] struct {
	View     V
	Redirect *Redirect
}

// Redirected reports whether the view was withheld.
func (o Outcome[V]) Redirected() bool {
	return o.Redirect != nil
}

// Guard evaluates view against the gate's current state. It never performs
// I/O: an Unauthenticated gate yields a replacing redirect to LoginPath, an
// Authenticated one yields view unchanged.
func Guard[V any](g *Gate, view V) Outcome[V] {
	if !g.IsAuthenticated() {
		return Outcome[V]{Redirect: &Redirect{To: LoginPath, Replace: true}}
	}
	return Outcome[V]{View: view}
}
