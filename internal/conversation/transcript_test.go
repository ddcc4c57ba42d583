// internal/conversation/transcript_test.go
package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptSeedsGreeting(t *testing.T) {
	tr := New("Welcome, Pathfinder!")

	messages := tr.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleAssistant, messages[0].Role)
	assert.Equal(t, "Welcome, Pathfinder!", messages[0].Content)
	assert.Equal(t, 0, messages[0].Turn)
}

func TestTurnNumbersStrictlyIncrease(t *testing.T) {
	tr := New("")

	for want := 1; want <= 5; want++ {
		turn := tr.BeginTurn(fmt.Sprintf("question %d", want))
		assert.Equal(t, want, turn)
	}
	assert.Equal(t, 5, tr.CurrentTurn())
}

func TestCompleteAppendsAfterUserMessage(t *testing.T) {
	tr := New("")

	turn := tr.BeginTurn("Do I need a visa?")
	assert.True(t, tr.Complete(turn, "Yes, most travelers do."))

	messages := tr.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, "Do I need a visa?", messages[0].Content)
	assert.Equal(t, RoleAssistant, messages[1].Role)
	assert.Equal(t, "Yes, most travelers do.", messages[1].Content)
	assert.Equal(t, turn, messages[1].Turn)
}

func TestFragmentsPreserveCharacterOrder(t *testing.T) {
	tr := New("")

	turn := tr.BeginTurn("q")
	for _, fragment := range []string{"You ", "will ", "need ", "a ", "permit."} {
		assert.True(t, tr.AppendFragment(turn, fragment))
	}
	assert.True(t, tr.Complete(turn, ""))

	messages := tr.Messages()
	assert.Equal(t, "You will need a permit.", messages[len(messages)-1].Content)
}

func TestStaleFragmentsDiscarded(t *testing.T) {
	tr := New("")

	oldTurn := tr.BeginTurn("first question")
	assert.True(t, tr.AppendFragment(oldTurn, "partial "))

	newTurn := tr.BeginTurn("second question")

	// anything from the superseded turn is ignored
	assert.False(t, tr.AppendFragment(oldTurn, "answer"))
	assert.False(t, tr.Complete(oldTurn, "stale result"))

	assert.True(t, tr.AppendFragment(newTurn, "fresh answer"))
	assert.True(t, tr.Complete(newTurn, ""))

	messages := tr.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "fresh answer", messages[2].Content)
	for _, msg := range messages {
		assert.NotContains(t, msg.Content, "stale")
		assert.NotContains(t, msg.Content, "partial")
	}
}

func TestStaleFragmentsNeverInterleave(t *testing.T) {
	tr := New("")

	first := tr.BeginTurn("q1")
	tr.AppendFragment(first, "AAA")
	second := tr.BeginTurn("q2")
	tr.AppendFragment(second, "BBB")
	tr.AppendFragment(first, "AAA")
	tr.AppendFragment(second, "CCC")
	tr.Complete(second, "")

	messages := tr.Messages()
	assert.Equal(t, "BBBCCC", messages[len(messages)-1].Content)
}

func TestFailAppendsApology(t *testing.T) {
	tr := New("")

	turn := tr.BeginTurn("q")
	tr.AppendFragment(turn, "half an ans")
	assert.True(t, tr.Fail(turn, "Oops! Something went wrong. Please check your connection and try again."))

	messages := tr.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "Oops! Something went wrong. Please check your connection and try again.", messages[1].Content)
}

func TestCompleteWithFullTextWhenNothingStreamed(t *testing.T) {
	tr := New("")

	turn := tr.BeginTurn("q")
	assert.True(t, tr.Complete(turn, "full answer"))
	messages := tr.Messages()
	assert.Equal(t, "full answer", messages[len(messages)-1].Content)
}
