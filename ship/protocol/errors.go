package protocol

import "errors"

// ErrTruncated means a frame ended before a field's declared width did.
var ErrTruncated = errors.New("protocol: truncated frame")

// ErrMalformed means a frame's bytes do not conform to the wire format
// (bad varint, impossible variant tag, ...).
var ErrMalformed = errors.New("protocol: malformed frame")

// ErrUnsupportedVariant is returned when a decoded tagged union selects a
// variant index this codec does not implement. Per spec §4.2, only the v0
// shapes are required for correctness; newer variants must be rejected
// with this typed error rather than silently misinterpreted.
var ErrUnsupportedVariant = errors.New("protocol: unsupported variant")

// ErrSchemaNotLoaded is returned by any decode call made before the
// handshake's schema descriptor frame has been parsed (spec §4.2).
var ErrSchemaNotLoaded = errors.New("protocol: schema not loaded")
