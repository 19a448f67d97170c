package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mix-tools/mix-tools-go/src/json"
)

func TestSplitToolsResponse(t *testing.T) {
	raws, err := SplitToolsResponse([]byte(`{"tools":[]}`))
	require.NoError(t, err)
	assert.Empty(t, raws)

	_, err = SplitToolsResponse([]byte(`{"items":[]}`))
	assert.ErrorIs(t, err, ErrMissingTools)
}

func TestDetectShape(t *testing.T) {
	cases := map[string]Shape{
		`{"name":"a","properties":[]}`:                            ShapeNative,
		`{"type":"function","function":{"name":"a"}}`:             ShapeOpenAI,
		`{"name":"a","input_schema":{"type":"object"}}`:           ShapeAnthropic,
		`{"name":"a","description":"has no schema","tags":["x"]}`: ShapeNative,
	}
	for body, want := range cases {
		got, err := DetectShape(json.RawMessage(body))
		require.NoError(t, err)
		assert.Equal(t, want, got, body)
	}
	_, err := DetectShape(json.RawMessage(`[1]`))
	assert.Error(t, err)
}

func TestResultMember(t *testing.T) {
	r, ok := ResultMember(json.RawMessage(`{"result":{"output":"TEST RESULT"}}`))
	assert.True(t, ok)
	assert.JSONEq(t, `{"output":"TEST RESULT"}`, string(r))

	r, ok = ResultMember(json.RawMessage(`{"output":"bare"}`))
	assert.False(t, ok)
	assert.JSONEq(t, `{"output":"bare"}`, string(r))

	r, ok = ResultMember(json.RawMessage(`42`))
	assert.False(t, ok)
	assert.Equal(t, "42", string(r))
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "native", ShapeNative.String())
	assert.Equal(t, "openai", ShapeOpenAI.String())
	assert.Equal(t, "anthropic", ShapeAnthropic.String())
}
