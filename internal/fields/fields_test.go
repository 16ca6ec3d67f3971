package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blob = `{
  "DialogTitle": "Greeting",
  "DialogText": "Hello \"traveller\",\nwelcome.",
  "Options": [
    {"OptionSlot": 1, "Option": {"Title": "Yes", "DialogId": 2}},
    {"OptionSlot": 2, "Option": {"Title": "No", "DialogId": 3}}
  ]
}`

func TestStringFieldFind(t *testing.T) {
	f, ok := StringField("DialogText").Find(blob)
	require.True(t, ok)
	assert.Equal(t, `Hello \"traveller\",\nwelcome.`, f.Text)
	assert.Equal(t, f.Text, blob[f.Start:f.End])
}

func TestStringFieldDoesNotMatchSuffixedNames(t *testing.T) {
	titles := StringField("Title").FindAll(blob)
	require.Len(t, titles, 2)
	assert.Equal(t, "Yes", titles[0].Text)
	assert.Equal(t, "No", titles[1].Text)
}

func TestIntFieldFindAll(t *testing.T) {
	slots := IntField("OptionSlot").FindAll(blob)
	require.Len(t, slots, 2)
	assert.Equal(t, "1", slots[0].Text)
	assert.Equal(t, "2", slots[1].Text)
}

func TestFindMissing(t *testing.T) {
	_, ok := StringField("CompleteText").Find(blob)
	assert.False(t, ok)
}

func TestApplyReverseOrder(t *testing.T) {
	titles := StringField("Title").FindAll(blob)
	edits := []Edit{
		{Start: titles[0].Start, End: titles[0].End, Text: "Absolutely, yes"},
		{Start: titles[1].Start, End: titles[1].End, Text: "N"},
	}
	out, err := Apply(blob, edits)
	require.NoError(t, err)

	again := StringField("Title").FindAll(out)
	require.Len(t, again, 2)
	assert.Equal(t, "Absolutely, yes", again[0].Text)
	assert.Equal(t, "N", again[1].Text)
	// The snapshot is never mutated.
	assert.Equal(t, "Yes", titles[0].Text)
}

func TestApplyRejectsOverlap(t *testing.T) {
	_, err := Apply("abcdef", []Edit{{Start: 0, End: 3, Text: "x"}, {Start: 2, End: 4, Text: "y"}})
	require.Error(t, err)

	_, err = Apply("abc", []Edit{{Start: 1, End: 9, Text: "x"}})
	require.Error(t, err)
}

func TestApplyNoEdits(t *testing.T) {
	out, err := Apply("abc", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", out)
}

func TestNewPatternNeedsOneGroup(t *testing.T) {
	_, err := NewPattern("x", `"x": \d+`)
	require.Error(t, err)
}
