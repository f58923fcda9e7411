package player

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "State(-1)", State(-1).String())
}

func TestState_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]State{"state": Paused})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"paused"}`, string(b))

	var got map[string]State
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, Paused, got["state"])
}

func TestState_TextErrors(t *testing.T) {
	_, err := State(7).MarshalText()
	assert.Error(t, err)

	var s State
	assert.EqualError(t, s.UnmarshalText([]byte("rewinding")), `unknown state "rewinding"`)
}
