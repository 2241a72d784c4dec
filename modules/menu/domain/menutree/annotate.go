package menutree

// Annotate marks the first node (in Walk order) whose href matches
// currentPath as active, and it plus every ancestor as open. currentPath must
// already be normalized with NormalizePath. Flags from a previous call are
// cleared. No match is not an error: the forest is left unflagged.
// An empty href normalizes to "/" like any other path.
func Annotate(f *Forest, currentPath string) (int, bool) {
	for i := range f.nodes {
		f.nodes[i].Active = false
		f.nodes[i].Open = false
	}

	active := NoParent
	f.Walk(func(i int, _ int) bool {
		if NormalizePath(f.nodes[i].Href) == currentPath {
			active = i
			return false
		}
		return true
	})
	if active == NoParent {
		return NoParent, false
	}

	f.nodes[active].Active = true
	for i := active; i != NoParent; i = f.nodes[i].Parent {
		f.nodes[i].Open = true
	}
	return active, true
}
