package protocol

import (
	"bytes"
	"fmt"
)

// Schema is the upstream's self-description, delivered as the first
// inbound frame after the websocket handshake (spec §4.2, §6). This
// codec's v0 decode paths are hand-written against the known wire layout
// rather than driven by the descriptor, but the descriptor must still be
// parsed and cached before any result frame is decoded (spec: "No further
// decoding is attempted before the schema is loaded"), so a malformed or
// missing descriptor fails the connection instead of silently producing
// garbage blocks.
type Schema struct {
	raw []byte
}

// ParseSchema parses the textual schema descriptor. The text ends at the
// first NUL byte, or at the end of frame if it has none; ParseSchema itself
// appends nothing (the sync controller appends a NUL to the frame before
// calling it, per §6).
func ParseSchema(frame []byte) (*Schema, error) {
	buf := frame
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty schema frame", ErrMalformed)
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return &Schema{raw: out}, nil
}

// Raw returns the schema's textual bytes, trimmed of any trailing NUL.
func (s *Schema) Raw() []byte { return s.raw }
