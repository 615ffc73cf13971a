// Package normalize implements the block normalizer (C3): it rewrites a
// decoded BlocksResultV0 into a NativeBlock, applying the action
// filtering, ordering, and semantic invariants from spec §3 and §4.3. It
// performs no I/O and mutates no controller state (spec §4.3: "The
// normalizer is pure").
package normalize

import "github.com/vaultaevm/ship-receiver/common"

// NativeAction is one extracted action (spec §3).
type NativeAction struct {
	Ordinal  uint32
	Receiver common.Name
	Account  common.Name
	Name     common.Name
	Data     []byte
}

// NativeTrx is one transaction's extracted, ordered actions (spec §3).
type NativeTrx struct {
	ID         common.Hash
	CPUUsageUS uint32
	Elapsed    uint64
	Actions    []NativeAction
}

// NativeBlock is the normalized artifact published downstream (spec §3).
type NativeBlock struct {
	BlockNum     uint32
	ID           common.Hash
	Prev         common.Hash
	Timestamp    uint64
	LIB          uint32
	Transactions []NativeTrx
	NewConfig    *NativeAction
}
