package main

import "encoding/json"

// Events decoded from one record of a message stream. Exactly one of these
// is produced per record; the reader applies them in arrival order.
type (
	// contentDelta carries the next fragment of assistant text.
	contentDelta struct {
		Text string
	}

	// streamFailure is a backend-reported error. It is annotated into
	// the entry without ending the turn; the stream keeps going and
	// later deltas still apply.
	streamFailure struct {
		Message string
	}

	// malformedRecord is a record that was not valid JSON or carried no
	// recognized field. It is logged and skipped; the stream continues.
	malformedRecord struct {
		Raw string
	}
)

type streamRecord struct {
	Chunk    *string `json:"chunk"`
	Error    *string `json:"error"`
	Response *string `json:"response"`
}

// parseRecord decodes one framed record into its event. The chunk field is
// checked before error so a record carrying both acts as a delta. The
// response field covers the single-record non-streaming reply shape.
func parseRecord(line string) any {
	var rec streamRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return malformedRecord{Raw: line}
	}
	switch {
	case rec.Chunk != nil:
		return contentDelta{Text: *rec.Chunk}
	case rec.Error != nil:
		return streamFailure{Message: *rec.Error}
	case rec.Response != nil:
		return contentDelta{Text: *rec.Response}
	default:
		return malformedRecord{Raw: line}
	}
}
