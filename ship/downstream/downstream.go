// Package downstream defines this module's contract with its two external
// collaborators named in spec §6: the canonical-head provider and the
// block sink (the latter is ship/channel.Feed). Only the contracts are
// specified here — the canonical chain itself, and how it applies
// NativeBlocks, are out of scope (spec §1).
package downstream

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/vaultaevm/ship-receiver/common"
)

// Header is the subset of the downstream chain's block header this module
// reads: its height, its hash, and the PrevRandao field that secretly
// carries the upstream source-chain height (spec §6, §9).
type Header struct {
	Number     uint64
	Hash       common.Hash
	PrevRandao [32]byte
}

// CanonicalBlock is the downstream's answer to "what do I consider
// canonical at this height" (spec §6).
type CanonicalBlock struct {
	Header Header
}

// ErrDownstreamUnavailable is returned by a CanonicalBlockProvider when it
// has no canonical block to offer (spec §7: "DownstreamUnavailable —
// canonical head provider returned absent ... fatal; no retry").
var ErrDownstreamUnavailable = errors.New("downstream: canonical block unavailable")

// CanonicalBlockProvider is implemented by the downstream's canonical-head
// provider (spec §6): get_canonical_block_at_height(optional<u64>) ->
// optional<CanonicalBlock>. A nil height asks for the current head.
type CanonicalBlockProvider interface {
	CanonicalBlockAtHeight(ctx context.Context, height *uint64) (*CanonicalBlock, error)
}

// EncodeSourceHeight packs a 32-bit source-chain height into the low
// bytes of a prev_randao-shaped field, big-endian (spec §6, §9: "isolate
// the encode/decode pair behind a single named function").
func EncodeSourceHeight(height uint32) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint32(out[28:], height)
	return out
}

// DecodeSourceHeight is the inverse of EncodeSourceHeight.
func DecodeSourceHeight(prevRandao [32]byte) uint32 {
	return binary.BigEndian.Uint32(prevRandao[28:])
}
