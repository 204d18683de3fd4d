package ops

import (
	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

// Op is the sum type over every mutation apply_ops accepts: a SeqOp or a
// FlowOp. Go has no native sum type, so Op is a marker interface implemented
// only by the types in this package.
type Op interface {
	opKindName() string
}

// SeqOp is implemented by every operation that mutates a SequenceAst.
type SeqOp interface {
	Op
	isSeqOp()
}

// FlowOp is implemented by every operation that mutates a FlowchartAst.
type FlowOp interface {
	Op
	isFlowOp()
}

// ParticipantPatch carries optional updates to a Participant. A nil field
// means "keep". Role and Note are themselves optional on Participant, so
// their patch fields are double pointers: a nil outer pointer means "don't
// touch"; a non-nil outer pointer to a nil value means "clear"; a non-nil
// outer pointer to a non-nil value means "set".
type ParticipantPatch struct {
	MermaidName *string
	Role        **string
	Note        **string
}

// AddParticipant creates a new sequence-diagram participant.
type AddParticipant struct {
	ParticipantID ids.ObjectId
	MermaidName   string
	Role          *string
	Note          *string
}

func (AddParticipant) opKindName() string { return "AddParticipant" }
func (AddParticipant) isSeqOp()           {}

// UpdateParticipant applies patch to an existing participant.
type UpdateParticipant struct {
	ParticipantID ids.ObjectId
	Patch         ParticipantPatch
}

func (UpdateParticipant) opKindName() string { return "UpdateParticipant" }
func (UpdateParticipant) isSeqOp()           {}

// SetParticipantNote replaces a participant's note outright (nil clears it).
type SetParticipantNote struct {
	ParticipantID ids.ObjectId
	Note          *string
}

func (SetParticipantNote) opKindName() string { return "SetParticipantNote" }
func (SetParticipantNote) isSeqOp()           {}

// RemoveParticipant removes a participant and cascades to incident messages.
type RemoveParticipant struct {
	ParticipantID ids.ObjectId
}

func (RemoveParticipant) opKindName() string { return "RemoveParticipant" }
func (RemoveParticipant) isSeqOp()           {}

// AddMessage creates a new sequence message between two existing participants.
type AddMessage struct {
	MessageID ids.ObjectId
	From      ids.ObjectId
	To        ids.ObjectId
	Kind      model.SequenceMessageKind
	Arrow     *string
	Text      string
	OrderKey  int64
}

func (AddMessage) opKindName() string { return "AddMessage" }
func (AddMessage) isSeqOp()           {}

// MessagePatch carries optional updates to a Message.
type MessagePatch struct {
	Kind     *model.SequenceMessageKind
	Arrow    **string
	Text     *string
	OrderKey *int64
}

// UpdateMessage applies patch to an existing message.
type UpdateMessage struct {
	MessageID ids.ObjectId
	Patch     MessagePatch
}

func (UpdateMessage) opKindName() string { return "UpdateMessage" }
func (UpdateMessage) isSeqOp()           {}

// RemoveMessage removes a single message by id.
type RemoveMessage struct {
	MessageID ids.ObjectId
}

func (RemoveMessage) opKindName() string { return "RemoveMessage" }
func (RemoveMessage) isSeqOp()           {}
