package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/entities"
)

func TestParseReply(t *testing.T) {
	raw := `{"messages":[
		{"text":"Hi there!","facialExpression":"smile","animation":"TalkingOne"},
		{"text":"What can I do for you?","facialExpression":"default","animation":"Idle"}
	]}`

	utterances, err := ParseReply(raw)
	require.NoError(t, err)
	assert.Equal(t, []entities.Utterance{
		{Text: "Hi there!", FacialExpression: entities.ExpressionSmile, Animation: entities.AnimationTalkingOne},
		{Text: "What can I do for you?", FacialExpression: entities.ExpressionDefault, Animation: entities.AnimationIdle},
	}, utterances)
}

func TestParseReply_CodeFence(t *testing.T) {
	raw := "```json\n{\"messages\":[{\"text\":\"Hello\",\"facialExpression\":\"sad\",\"animation\":\"SadIdle\"}]}\n```"

	utterances, err := ParseReply(raw)
	require.NoError(t, err)
	require.Len(t, utterances, 1)
	assert.Equal(t, entities.AnimationSadIdle, utterances[0].Animation)
}

func TestParseReply_SchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Sure! Here is my answer."},
		{"no messages", `{"messages":[]}`},
		{"missing messages", `{}`},
		{"unknown field", `{"messages":[{"text":"a","facialExpression":"smile","animation":"Idle","mood":"x"}]}`},
		{"missing animation", `{"messages":[{"text":"a","facialExpression":"smile"}]}`},
		{"empty text", `{"messages":[{"text":"  ","facialExpression":"smile","animation":"Idle"}]}`},
		{"invalid expression", `{"messages":[{"text":"a","facialExpression":"grin","animation":"Idle"}]}`},
		{"invalid animation", `{"messages":[{"text":"a","facialExpression":"smile","animation":"Dance"}]}`},
		{"wrong type", `{"messages":[{"text":1,"facialExpression":"smile","animation":"Idle"}]}`},
		{"trailing data", `{"messages":[{"text":"a","facialExpression":"smile","animation":"Idle"}]} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.raw)
			assert.ErrorIs(t, err, domain.ErrSchemaViolation)
		})
	}
}

func TestReplySchema(t *testing.T) {
	schema := replySchema()

	messages := schema.Properties["messages"]
	require.NotNil(t, messages)
	require.NotNil(t, messages.MaxItems)
	assert.Equal(t, int64(3), *messages.MaxItems)

	item := messages.Items
	assert.ElementsMatch(t, []string{"text", "facialExpression", "animation"}, item.Required)
	assert.Len(t, item.Properties["facialExpression"].Enum, len(entities.FacialExpressions))
	assert.Len(t, item.Properties["animation"].Enum, len(entities.Animations))
}
