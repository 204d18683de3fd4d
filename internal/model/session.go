package model

import "github.com/bnomei/nereid/internal/ids"

// Session is the top-level container of diagrams, walkthroughs,
// cross-references, and the active selection. Insertion order of the
// Diagrams and Walkthroughs maps is the presentation order.
type Session struct {
	SessionID           ids.SessionId
	Diagrams            *OrderedMap[ids.DiagramId, *Diagram]
	Walkthroughs        *OrderedMap[ids.WalkthroughId, *Walkthrough]
	XRefs               *OrderedMap[ids.XRefId, *XRef]
	ActiveDiagramID     *ids.DiagramId
	ActiveWalkthroughID *ids.WalkthroughId
	SelectedObjectRefs  *selectionSet
}

// NewSession returns an empty session identified by id.
func NewSession(id ids.SessionId) *Session {
	return &Session{
		SessionID:          id,
		Diagrams:           NewOrderedMap[ids.DiagramId, *Diagram](),
		Walkthroughs:       NewOrderedMap[ids.WalkthroughId, *Walkthrough](),
		XRefs:              NewOrderedMap[ids.XRefId, *XRef](),
		SelectedObjectRefs: newSelectionSet(),
	}
}

// SetActiveDiagramID sets the active diagram id without validating that it
// exists. Per spec.md §9's open question, callers that later look up a
// stale id simply get "not found" from the Diagrams map — this never fails.
func (s *Session) SetActiveDiagramID(id ids.DiagramId) {
	s.ActiveDiagramID = &id
}

// SetActiveWalkthroughID sets the active walkthrough id without validating
// that it exists, mirroring SetActiveDiagramID.
func (s *Session) SetActiveWalkthroughID(id ids.WalkthroughId) {
	s.ActiveWalkthroughID = &id
}

// ObjectRefExists reports whether ref resolves to a live object in the
// current session: the diagram exists, and — for the category shapes
// Nereid knows about — the named object exists within it.
func (s *Session) ObjectRefExists(ref ids.ObjectRef) bool {
	diagram, ok := s.Diagrams.Get(ref.Diagram)
	if !ok {
		return false
	}
	segs := ref.Category.Segments()
	if len(segs) == 0 {
		return false
	}

	switch diagram.Ast.Kind {
	case KindSequence:
		ast := diagram.Ast.Sequence
		switch {
		case len(segs) >= 2 && segs[0] == "seq" && segs[1] == "participant":
			return ast.Participants.Contains(ref.Object)
		case len(segs) >= 2 && segs[0] == "seq" && segs[1] == "message":
			for _, m := range ast.Messages {
				if m.MessageID.String() == ref.Object.String() {
					return true
				}
			}
			return false
		default:
			return false
		}
	case KindFlowchart:
		ast := diagram.Ast.Flowchart
		switch {
		case len(segs) >= 2 && segs[0] == "flow" && segs[1] == "node":
			return ast.Nodes.Contains(ref.Object)
		case len(segs) >= 2 && segs[0] == "flow" && segs[1] == "edge":
			return ast.Edges.Contains(ref.Object)
		default:
			return false
		}
	default:
		return false
	}
}

// RefreshXRefStatuses recomputes every xref's status from current refs and
// drops any selected object ref that no longer resolves. Best-effort: it
// never fails.
func (s *Session) RefreshXRefStatuses() {
	for _, xrefID := range s.XRefs.Keys() {
		xref, _ := s.XRefs.Get(xrefID)
		fromMissing := !s.ObjectRefExists(xref.From)
		toMissing := !s.ObjectRefExists(xref.To)
		xref.Status = StatusFromFlags(fromMissing, toMissing)
	}
	s.SelectedObjectRefs.retainFunc(s.ObjectRefExists)
}

// selectionSet is a deterministic-iteration set of ObjectRef, keyed by the
// canonical wire string so Equal refs collapse to one entry.
type selectionSet struct {
	order []ids.ObjectRef
	index map[string]int
}

func newSelectionSet() *selectionSet {
	return &selectionSet{index: make(map[string]int)}
}

// Add inserts ref if not already present.
func (s *selectionSet) Add(ref ids.ObjectRef) {
	key := ref.String()
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, ref)
}

// Remove deletes ref if present.
func (s *selectionSet) Remove(ref ids.ObjectRef) {
	key := ref.String()
	pos, ok := s.index[key]
	if !ok {
		return
	}
	s.order = append(s.order[:pos], s.order[pos+1:]...)
	delete(s.index, key)
	for k, v := range s.index {
		if v > pos {
			s.index[k] = v - 1
		}
	}
}

// Refs returns the selected refs in deterministic (insertion) order.
func (s *selectionSet) Refs() []ids.ObjectRef {
	out := make([]ids.ObjectRef, len(s.order))
	copy(out, s.order)
	return out
}

func (s *selectionSet) retainFunc(exists func(ids.ObjectRef) bool) {
	kept := s.order[:0:0]
	for _, ref := range s.order {
		if exists(ref) {
			kept = append(kept, ref)
		}
	}
	s.order = kept
	s.index = make(map[string]int, len(kept))
	for i, ref := range kept {
		s.index[ref.String()] = i
	}
}

// Select adds ref to the session's selection.
func (s *Session) Select(ref ids.ObjectRef) { s.SelectedObjectRefs.Add(ref) }

// Deselect removes ref from the session's selection.
func (s *Session) Deselect(ref ids.ObjectRef) { s.SelectedObjectRefs.Remove(ref) }
