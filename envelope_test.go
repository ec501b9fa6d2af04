package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRecord_Chunk(t *testing.T) {
	ev := parseRecord(`{"chunk":"hello"}`)
	require.Equal(t, contentDelta{Text: "hello"}, ev)
}

func TestParseRecord_EmptyChunk(t *testing.T) {
	// A present-but-empty chunk is still a delta, not malformed
	ev := parseRecord(`{"chunk":""}`)
	require.Equal(t, contentDelta{Text: ""}, ev)
}

func TestParseRecord_Error(t *testing.T) {
	ev := parseRecord(`{"error":"model unavailable"}`)
	require.Equal(t, streamFailure{Message: "model unavailable"}, ev)
}

func TestParseRecord_ChunkWinsOverError(t *testing.T) {
	ev := parseRecord(`{"chunk":"text","error":"oops"}`)
	require.Equal(t, contentDelta{Text: "text"}, ev)
}

func TestParseRecord_Response(t *testing.T) {
	// Single-record non-streaming reply shape
	ev := parseRecord(`{"response":"full reply","model":"m1"}`)
	require.Equal(t, contentDelta{Text: "full reply"}, ev)
}

func TestParseRecord_InvalidJSON(t *testing.T) {
	ev := parseRecord(`{"chunk":"tru`)
	require.Equal(t, malformedRecord{Raw: `{"chunk":"tru`}, ev)
}

func TestParseRecord_NoRecognizedField(t *testing.T) {
	ev := parseRecord(`{"status":"ok"}`)
	require.Equal(t, malformedRecord{Raw: `{"status":"ok"}`}, ev)
}

func TestParseRecord_UnknownFieldsIgnored(t *testing.T) {
	ev := parseRecord(`{"chunk":"a","meta":{"tokens":5}}`)
	require.Equal(t, contentDelta{Text: "a"}, ev)
}
