// Package common holds the small value types shared across the receiver's
// packages, in the spirit of the teacher project's own `common` package
// (referenced throughout tos/peer.go, tos/peerset.go, tosclient.go as
// common.Hash, though its source lives outside this module's narrower
// scope).
package common

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the expected length of a block or transaction identifier.
const HashLength = 32

// Hash represents a 32-byte block or transaction identifier.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, left-padding or truncating as needed.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Name is the upstream chain's 64-bit base-32 encoded account/action name,
// e.g. "evmevmevmevm" or "pushtx". It is the type behind NativeAction's
// receiver, account, and name fields (spec §3).
type Name uint64

const nameCharset = ".12345abcdefghijklmnopqrstuvwxyz"

// String decodes n into its base-32 textual representation, following the
// same bit layout the upstream chain uses to encode account names: 12
// characters of 5 bits each, followed by one final character of 4 bits.
func (n Name) String() string {
	var buf [13]byte
	tmp := uint64(n)
	for i := 0; i < 12; i++ {
		shift := uint(64 - 5*(i+1))
		idx := (tmp >> shift) & 0x1f
		buf[i] = nameCharset[idx]
	}
	buf[12] = nameCharset[tmp&0xf]

	end := 13
	for end > 0 && buf[end-1] == '.' {
		end--
	}
	return string(buf[:end])
}

// StringToName encodes s (at most 13 characters drawn from nameCharset,
// with the 13th restricted to the first 16 symbols) into a Name. It is the
// inverse of Name.String, used to express well-known names (the core
// account, "pushtx", "evmtx", "configchange") as readable source constants.
func StringToName(s string) (Name, error) {
	if len(s) > 13 {
		return 0, fmt.Errorf("common: name %q longer than 13 characters", s)
	}
	var n uint64
	for i := 0; i < 12; i++ {
		var v uint64
		if i < len(s) {
			idx, err := charIndex(s[i])
			if err != nil {
				return 0, err
			}
			v = idx
		}
		shift := uint(64 - 5*(i+1))
		n |= v << shift
	}
	if len(s) == 13 {
		idx, err := charIndex(s[12])
		if err != nil {
			return 0, err
		}
		if idx > 0xf {
			return 0, fmt.Errorf("common: name %q has invalid 13th character", s)
		}
		n |= idx
	}
	return Name(n), nil
}

// MustStringToName is StringToName but panics on error; used only for
// package-level constants derived from literals known to be valid.
func MustStringToName(s string) Name {
	n, err := StringToName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func charIndex(c byte) (uint64, error) {
	for i := 0; i < len(nameCharset); i++ {
		if nameCharset[i] == c {
			return uint64(i), nil
		}
	}
	return 0, fmt.Errorf("common: invalid name character %q", c)
}
