package protocol

import "github.com/vaultaevm/ship-receiver/common"

// Well-known action names the normalizer filters on (spec §3, §4.3).
var (
	PushTxName       = common.MustStringToName("pushtx")
	EvmTxName        = common.MustStringToName("evmtx")
	ConfigChangeName = common.MustStringToName("configchange")
)

// BlockPosition pairs a height with the block identifier at that height,
// the shape the upstream uses for this_block / prev_block / head /
// last_irreversible fields.
type BlockPosition struct {
	BlockNum uint32
	BlockID  common.Hash
}

// GetStatusRequestV0 is an empty request (spec §4.2).
type GetStatusRequestV0 struct{}

// GetBlocksRequestV0 is the subscription request the sync controller sends
// once per connection (spec §4.2, §4.4 step 4).
type GetBlocksRequestV0 struct {
	StartBlockNum        uint32
	EndBlockNum          uint32
	MaxMessagesInFlight   uint32
	HavePositions         []BlockPosition
	IrreversibleOnly      bool
	FetchBlock            bool
	FetchTraces           bool
	FetchDeltas           bool
}

// GetStatusResultV0 carries the upstream's view of available history.
type GetStatusResultV0 struct {
	Head             BlockPosition
	LastIrreversible BlockPosition
	TraceBeginBlock  uint32
	TraceEndBlock    uint32
	ChainStateBeginBlock uint32
	ChainStateEndBlock   uint32
}

// BlocksResultV0 is one subscription message from an active get_blocks
// session (spec §4.2, §4.3).
type BlocksResultV0 struct {
	Head             BlockPosition
	LastIrreversible BlockPosition
	ThisBlock        *BlockPosition
	PrevBlock        *BlockPosition
	Block            []byte // serialized signed_block, present iff fetch_block was requested and available
	Traces           []byte // varuint32 count + that many serialized transaction_trace, present iff fetch_traces
	Deltas           []byte // unused by this module (fetch_deltas is always false)
}

// Result is the decoded tagged union of inbound result frames.
type Result struct {
	Status *GetStatusResultV0
	Blocks *BlocksResultV0
}

// TransactionStatus mirrors the upstream's transaction_trace status enum;
// only Executed is meaningful to the normalizer (spec §3 invariant 6).
type TransactionStatus uint8

const (
	TransactionStatusExecuted TransactionStatus = iota
	TransactionStatusSoftFail
	TransactionStatusHardFail
	TransactionStatusDelayed
	TransactionStatusExpired
)

// Action is the inner (account, name, data) payload of an action trace.
type Action struct {
	Account common.Name
	Name    common.Name
	Data    []byte
}

// ActionReceiptV0 carries the upstream-assigned global_sequence used for
// action ordering (spec §3 invariant 5, §4.3).
type ActionReceiptV0 struct {
	Receiver       common.Name
	GlobalSequence uint64
}

// ActionTraceV0 is one action execution record inside a transaction trace.
type ActionTraceV0 struct {
	ActionOrdinal        uint32
	CreatorActionOrdinal uint32
	Receiver             common.Name
	Act                  Action
	Receipt              *ActionReceiptV0
}

// TransactionTraceV0 is one transaction's execution record, as embedded in
// the traces byte stream of a BlocksResultV0 (spec §4.2, §4.3).
type TransactionTraceV0 struct {
	ID           common.Hash
	Status       TransactionStatus
	CPUUsageUS   uint32
	Elapsed      uint64
	ActionTraces []ActionTraceV0
}

// SignedBlock is the subset of the upstream's serialized signed_block this
// module needs: only the block timestamp is consumed (spec §4.3 step 2).
type SignedBlock struct {
	TimestampTicks uint64
}

func nameFromU64(v uint64) common.Name { return common.Name(v) }
