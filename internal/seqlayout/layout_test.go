package seqlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnomei/nereid/internal/ids"
	"github.com/bnomei/nereid/internal/model"
)

func buildSeq(t *testing.T) (*model.SequenceAst, ids.ObjectId, ids.ObjectId) {
	t.Helper()
	ast := model.NewSequenceAst()
	a, err := ids.NewObjectId("p:a")
	require.NoError(t, err)
	b, err := ids.NewObjectId("p:b")
	require.NoError(t, err)
	ast.Participants.Set(a, model.Participant{MermaidName: "Alice"})
	ast.Participants.Set(b, model.Participant{MermaidName: "Bob"})
	return ast, a, b
}

func TestLayout_MessagesInCanonicalOrder(t *testing.T) {
	ast, a, b := buildSeq(t)
	m1, _ := ids.NewObjectId("m:1")
	m2, _ := ids.NewObjectId("m:2")
	ast.Messages = []model.Message{
		{MessageID: m2, From: a, To: b, Kind: model.Sync, Text: "second", OrderKey: 2},
		{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "first", OrderKey: 1},
	}

	layout := Layout(ast)

	require.Len(t, layout.Messages, 2)
	assert.Equal(t, "m:1", layout.Messages[0].MessageID.String())
	assert.Equal(t, uint32(0), layout.Messages[0].Row)
	assert.Equal(t, "m:2", layout.Messages[1].MessageID.String())
	assert.Equal(t, uint32(1), layout.Messages[1].Row)
}

func TestLayout_SelfMessageReservesExtraRow(t *testing.T) {
	ast, a, _ := buildSeq(t)
	m1, _ := ids.NewObjectId("m:1")
	m2, _ := ids.NewObjectId("m:2")
	ast.Messages = []model.Message{
		{MessageID: m1, From: a, To: a, Kind: model.Sync, Text: "self", OrderKey: 1},
		{MessageID: m2, From: a, To: a, Kind: model.Sync, Text: "next", OrderKey: 2},
	}

	layout := Layout(ast)

	require.Len(t, layout.Messages, 2)
	assert.True(t, layout.Messages[0].SelfLoop)
	assert.Equal(t, uint32(0), layout.Messages[0].Row)
	assert.Equal(t, uint32(2), layout.Messages[1].Row)
	assert.Equal(t, uint32(4), layout.Rows)
}

func TestLayout_BlockIgnoresAbsentMessageRef(t *testing.T) {
	ast, a, b := buildSeq(t)
	m1, _ := ids.NewObjectId("m:1")
	missing, _ := ids.NewObjectId("m:missing")
	ast.Messages = []model.Message{
		{MessageID: m1, From: a, To: b, Kind: model.Sync, Text: "hi", OrderKey: 1},
	}
	ast.Blocks = []model.Block{
		{
			BlockID: "alt:1",
			Kind:    model.Alt,
			Sections: []model.Section{
				{SectionID: "s1", Kind: model.Main, MessageIDs: []ids.ObjectId{m1, missing}},
			},
		},
	}

	layout := Layout(ast)

	require.Len(t, layout.Blocks, 1)
	assert.True(t, layout.Blocks[0].Complete)
}
