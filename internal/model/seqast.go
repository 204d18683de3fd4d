package model

import "github.com/bnomei/nereid/internal/ids"

// SequenceMessageKind enumerates the arrow semantics of a sequence message.
type SequenceMessageKind int

const (
	// Sync is a synchronous call, canonically rendered with "->>".
	Sync SequenceMessageKind = iota
	// Async is a fire-and-forget call, canonically rendered with "-)".
	Async
	// Return is a reply, canonically rendered with "-->>".
	Return
)

// CanonicalArrow returns the canonical raw arrow text for kind.
func (k SequenceMessageKind) CanonicalArrow() string {
	switch k {
	case Sync:
		return "->>"
	case Async:
		return "-)"
	case Return:
		return "-->>"
	default:
		return "->>"
	}
}

// Participant is a sequence-diagram lifeline.
type Participant struct {
	MermaidName string
	Role        *string
	Note        *string
}

// Message is one arrow between two participants.
type Message struct {
	MessageID ids.ObjectId
	From      ids.ObjectId
	To        ids.ObjectId
	Kind      SequenceMessageKind
	Arrow     *string // nil means "use the canonical arrow for Kind"
	Text      string
	OrderKey  int64
}

// SectionKind enumerates the kinds of a sequence block's sub-sections.
type SectionKind int

const (
	// Main is the primary section of an Alt/Opt/Loop block.
	Main SectionKind = iota
	// Else is an Alt block's alternate branch.
	Else
	// And is a Par block's concurrent branch.
	And
)

// String renders the canonical lowercase name of k.
func (k SectionKind) String() string {
	switch k {
	case Else:
		return "else"
	case And:
		return "and"
	default:
		return "main"
	}
}

// Section is one branch of a nested sequence block.
type Section struct {
	SectionID  string
	Kind       SectionKind
	Header     *string
	MessageIDs []ids.ObjectId
}

// BlockKind enumerates the kinds of nested sequence structuring blocks.
type BlockKind int

const (
	// Alt is an if/else block.
	Alt BlockKind = iota
	// Opt is an optional block.
	Opt
	// Loop is a repeating block.
	Loop
	// Par is a parallel block.
	Par
)

// String renders the canonical lowercase name of k.
func (k BlockKind) String() string {
	switch k {
	case Opt:
		return "opt"
	case Loop:
		return "loop"
	case Par:
		return "par"
	default:
		return "alt"
	}
}

// ParseBlockKind parses the canonical lowercase name back into a BlockKind,
// defaulting to Alt for unrecognized input.
func ParseBlockKind(s string) BlockKind {
	switch s {
	case "opt":
		return Opt
	case "loop":
		return Loop
	case "par":
		return Par
	default:
		return Alt
	}
}

// ParseSectionKind parses the canonical lowercase name back into a
// SectionKind, defaulting to Main for unrecognized input.
func ParseSectionKind(s string) SectionKind {
	switch s {
	case "else":
		return Else
	case "and":
		return And
	default:
		return Main
	}
}

// Block is a nested sequence structuring construct (alt/opt/loop/par).
// Blocks nest recursively via their own Blocks field; Sections reference
// messages by id, never by position.
type Block struct {
	BlockID  string
	Kind     BlockKind
	Header   *string
	Sections []Section
	Blocks   []Block
}

// SequenceAst is the typed object tree for a sequence diagram.
type SequenceAst struct {
	Participants *OrderedMap[ids.ObjectId, Participant]
	Messages     []Message
	Blocks       []Block
}

// NewSequenceAst returns an empty sequence AST.
func NewSequenceAst() *SequenceAst {
	return &SequenceAst{Participants: NewOrderedMap[ids.ObjectId, Participant]()}
}

// CmpMessagesInOrder implements the canonical message ordering: primarily
// by OrderKey, then lexicographically by MessageID as a stable tie-break.
func CmpMessagesInOrder(a, b Message) int {
	if a.OrderKey != b.OrderKey {
		if a.OrderKey < b.OrderKey {
			return -1
		}
		return 1
	}
	as, bs := a.MessageID.String(), b.MessageID.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// EffectiveArrow returns the arrow that should be rendered for msg: its
// explicit raw arrow if set, otherwise the canonical arrow for its kind.
func (m Message) EffectiveArrow() string {
	if m.Arrow != nil {
		return *m.Arrow
	}
	return m.Kind.CanonicalArrow()
}

// Clone returns a deep-enough copy of the AST for use as a mutation
// sandbox: participants and the message slice are copied, block trees are
// copied recursively.
func (a *SequenceAst) Clone() *SequenceAst {
	out := &SequenceAst{
		Participants: a.Participants.Clone(),
		Messages:     append([]Message(nil), a.Messages...),
		Blocks:       cloneBlocks(a.Blocks),
	}
	return out
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		sections := make([]Section, len(b.Sections))
		for j, s := range b.Sections {
			sections[j] = Section{
				SectionID:  s.SectionID,
				Kind:       s.Kind,
				Header:     s.Header,
				MessageIDs: append([]ids.ObjectId(nil), s.MessageIDs...),
			}
		}
		out[i] = Block{
			BlockID:  b.BlockID,
			Kind:     b.Kind,
			Header:   b.Header,
			Sections: sections,
			Blocks:   cloneBlocks(b.Blocks),
		}
	}
	return out
}
