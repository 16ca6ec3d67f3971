package parser

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignDuplicateOriginalKeyLogsError(t *testing.T) {
	var buf bytes.Buffer
	env := Env{Log: zerolog.New(&buf)}
	units := []unit{
		{key: "a", addr: "a", text: "1"},
		{key: "a", addr: "a", text: "2"},
	}

	recs := align(env, units, nil, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, "1", recs[0].Original)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"key":"a"`)
}
