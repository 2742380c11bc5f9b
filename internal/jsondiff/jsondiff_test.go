package jsondiff

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSortsKeys(t *testing.T) {
	a, err := Canonical(json.RawMessage(`{"b":2,"a":1}`))
	require.NoError(t, err)
	b, err := Canonical(json.RawMessage(`{"a":1,"b":2}`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", a)
}

func TestCanonicalAcceptsStructs(t *testing.T) {
	out, err := Canonical(struct {
		Name string `json:"name"`
	}{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"x\"\n}\n", out)
}

func TestCanonicalRejectsInvalidJSON(t *testing.T) {
	_, err := Canonical(json.RawMessage(`{broken`))
	assert.Error(t, err)
}

func TestUnifiedIdenticalInputsEmpty(t *testing.T) {
	text, err := Canonical(json.RawMessage(`{"x":1}`))
	require.NoError(t, err)

	patch, err := Unified("config", text, text)
	require.NoError(t, err)
	assert.Empty(t, patch)
}

func TestUnifiedShowsChangedLines(t *testing.T) {
	before, err := Canonical(json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	after, err := Canonical(json.RawMessage(`{"x":2}`))
	require.NoError(t, err)

	patch, err := Unified("config", before, after)
	require.NoError(t, err)
	assert.Contains(t, patch, "--- config")
	assert.Contains(t, patch, "+++ config")
	assert.Contains(t, patch, "-  \"x\": 1")
	assert.Contains(t, patch, "+  \"x\": 2")
}

func TestUnifiedIsDirectional(t *testing.T) {
	before, err := Canonical(json.RawMessage(`{"x":1}`))
	require.NoError(t, err)
	after, err := Canonical(json.RawMessage(`{"x":2}`))
	require.NoError(t, err)

	forward, err := Unified("config", before, after)
	require.NoError(t, err)
	backward, err := Unified("config", after, before)
	require.NoError(t, err)

	assert.NotEqual(t, forward, backward)
	assert.Contains(t, backward, "-  \"x\": 2")
	assert.Contains(t, backward, "+  \"x\": 1")
}
