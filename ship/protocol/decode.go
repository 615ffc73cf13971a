package protocol

import "fmt"

const (
	tagGetStatusResultV0 = 0
	tagGetBlocksResultV0 = 1
)

// DecodeResult decodes one inbound result frame. schema must already be
// loaded (spec §4.2: "no further decoding is attempted before the schema
// is loaded"); schema itself is not consulted by the v0-only decode paths
// below, but its presence is required so a codec used before handshake
// fails loudly instead of silently misparsing.
func DecodeResult(schema *Schema, data []byte) (Result, error) {
	if schema == nil {
		return Result{}, ErrSchemaNotLoaded
	}
	c := newCursor(data)
	tag, err := c.varuint32()
	if err != nil {
		return Result{}, fmt.Errorf("decode result tag: %w", err)
	}
	switch tag {
	case tagGetStatusResultV0:
		r, err := decodeGetStatusResultV0(c)
		if err != nil {
			return Result{}, err
		}
		return Result{Status: r}, nil
	case tagGetBlocksResultV0:
		r, err := decodeBlocksResultV0(c)
		if err != nil {
			return Result{}, err
		}
		return Result{Blocks: r}, nil
	default:
		return Result{}, fmt.Errorf("%w: result tag %d", ErrUnsupportedVariant, tag)
	}
}

func (c *cursor) blockPosition() (BlockPosition, error) {
	num, err := c.u32()
	if err != nil {
		return BlockPosition{}, err
	}
	h, err := c.hash()
	if err != nil {
		return BlockPosition{}, err
	}
	return BlockPosition{BlockNum: num, BlockID: h}, nil
}

func (c *cursor) optionalBlockPosition() (*BlockPosition, error) {
	present, err := c.optionalPresent()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	p, err := c.blockPosition()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *cursor) optionalBytes() ([]byte, error) {
	present, err := c.optionalPresent()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	n, err := c.varuint32()
	if err != nil {
		return nil, err
	}
	b, err := c.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func decodeGetStatusResultV0(c *cursor) (*GetStatusResultV0, error) {
	head, err := c.blockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode status head: %w", err)
	}
	lib, err := c.blockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode status lib: %w", err)
	}
	traceBegin, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("decode trace_begin_block: %w", err)
	}
	traceEnd, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("decode trace_end_block: %w", err)
	}
	csBegin, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("decode chain_state_begin_block: %w", err)
	}
	csEnd, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("decode chain_state_end_block: %w", err)
	}
	return &GetStatusResultV0{
		Head:                 head,
		LastIrreversible:     lib,
		TraceBeginBlock:      traceBegin,
		TraceEndBlock:        traceEnd,
		ChainStateBeginBlock: csBegin,
		ChainStateEndBlock:   csEnd,
	}, nil
}

func decodeBlocksResultV0(c *cursor) (*BlocksResultV0, error) {
	head, err := c.blockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode blocks head: %w", err)
	}
	lib, err := c.blockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode blocks lib: %w", err)
	}
	thisBlock, err := c.optionalBlockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode this_block: %w", err)
	}
	prevBlock, err := c.optionalBlockPosition()
	if err != nil {
		return nil, fmt.Errorf("decode prev_block: %w", err)
	}
	block, err := c.optionalBytes()
	if err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	traces, err := c.optionalBytes()
	if err != nil {
		return nil, fmt.Errorf("decode traces: %w", err)
	}
	deltas, err := c.optionalBytes()
	if err != nil {
		return nil, fmt.Errorf("decode deltas: %w", err)
	}
	return &BlocksResultV0{
		Head:             head,
		LastIrreversible: lib,
		ThisBlock:        thisBlock,
		PrevBlock:        prevBlock,
		Block:            block,
		Traces:           traces,
		Deltas:           deltas,
	}, nil
}

// DecodeSignedBlock extracts only the timestamp (spec §4.3 step 2; the
// normalizer never needs the rest of the signed block's contents).
func DecodeSignedBlock(data []byte) (*SignedBlock, error) {
	c := newCursor(data)
	ticks, err := c.u64()
	if err != nil {
		return nil, fmt.Errorf("decode signed_block timestamp: %w", err)
	}
	return &SignedBlock{TimestampTicks: ticks}, nil
}

// DecodeTransactionTraces walks the traces byte stream: a leading
// varuint32 count followed by that many serialized transaction_trace
// records (spec §4.2, §4.3 step 3).
func DecodeTransactionTraces(data []byte) ([]TransactionTraceV0, error) {
	c := newCursor(data)
	n, err := c.varuint32()
	if err != nil {
		return nil, fmt.Errorf("decode trace count: %w", err)
	}
	out := make([]TransactionTraceV0, 0, n)
	for i := uint32(0); i < n; i++ {
		tt, err := decodeTransactionTrace(c)
		if err != nil {
			return nil, fmt.Errorf("decode transaction_trace[%d]: %w", i, err)
		}
		out = append(out, tt)
	}
	return out, nil
}

const tagTransactionTraceV0 = 0

func decodeTransactionTrace(c *cursor) (TransactionTraceV0, error) {
	tag, err := c.varuint32()
	if err != nil {
		return TransactionTraceV0{}, err
	}
	if tag != tagTransactionTraceV0 {
		return TransactionTraceV0{}, fmt.Errorf("%w: transaction_trace tag %d", ErrUnsupportedVariant, tag)
	}
	id, err := c.hash()
	if err != nil {
		return TransactionTraceV0{}, fmt.Errorf("decode trx id: %w", err)
	}
	statusByte, err := c.byte()
	if err != nil {
		return TransactionTraceV0{}, fmt.Errorf("decode trx status: %w", err)
	}
	cpu, err := c.u32()
	if err != nil {
		return TransactionTraceV0{}, fmt.Errorf("decode cpu_usage_us: %w", err)
	}
	elapsed, err := c.u64()
	if err != nil {
		return TransactionTraceV0{}, fmt.Errorf("decode elapsed: %w", err)
	}
	actCount, err := c.varuint32()
	if err != nil {
		return TransactionTraceV0{}, fmt.Errorf("decode action_traces count: %w", err)
	}
	actions := make([]ActionTraceV0, 0, actCount)
	for i := uint32(0); i < actCount; i++ {
		at, err := decodeActionTrace(c)
		if err != nil {
			return TransactionTraceV0{}, fmt.Errorf("decode action_trace[%d]: %w", i, err)
		}
		actions = append(actions, at)
	}
	return TransactionTraceV0{
		ID:           id,
		Status:       TransactionStatus(statusByte),
		CPUUsageUS:   cpu,
		Elapsed:      elapsed,
		ActionTraces: actions,
	}, nil
}

const tagActionTraceV0 = 0
const tagActionReceiptV0 = 0

func decodeActionTrace(c *cursor) (ActionTraceV0, error) {
	tag, err := c.varuint32()
	if err != nil {
		return ActionTraceV0{}, err
	}
	if tag != tagActionTraceV0 {
		return ActionTraceV0{}, fmt.Errorf("%w: action_trace tag %d", ErrUnsupportedVariant, tag)
	}
	ordinal, err := c.varuint32()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode action_ordinal: %w", err)
	}
	creator, err := c.varuint32()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode creator_action_ordinal: %w", err)
	}
	receiverRaw, err := c.u64()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode receiver: %w", err)
	}
	accountRaw, err := c.u64()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode act.account: %w", err)
	}
	nameRaw, err := c.u64()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode act.name: %w", err)
	}
	dataLen, err := c.varuint32()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode act.data length: %w", err)
	}
	dataBytes, err := c.take(int(dataLen))
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode act.data: %w", err)
	}
	data := make([]byte, len(dataBytes))
	copy(data, dataBytes)

	hasReceipt, err := c.optionalPresent()
	if err != nil {
		return ActionTraceV0{}, fmt.Errorf("decode receipt presence: %w", err)
	}
	var receipt *ActionReceiptV0
	if hasReceipt {
		rtag, err := c.varuint32()
		if err != nil {
			return ActionTraceV0{}, fmt.Errorf("decode receipt tag: %w", err)
		}
		if rtag != tagActionReceiptV0 {
			return ActionTraceV0{}, fmt.Errorf("%w: action_receipt tag %d", ErrUnsupportedVariant, rtag)
		}
		recvRaw, err := c.u64()
		if err != nil {
			return ActionTraceV0{}, fmt.Errorf("decode receipt.receiver: %w", err)
		}
		gseq, err := c.u64()
		if err != nil {
			return ActionTraceV0{}, fmt.Errorf("decode receipt.global_sequence: %w", err)
		}
		receipt = &ActionReceiptV0{
			Receiver:       nameFromU64(recvRaw),
			GlobalSequence: gseq,
		}
	}

	return ActionTraceV0{
		ActionOrdinal:        ordinal,
		CreatorActionOrdinal: creator,
		Receiver:             nameFromU64(receiverRaw),
		Act: Action{
			Account: nameFromU64(accountRaw),
			Name:    nameFromU64(nameRaw),
			Data:    data,
		},
		Receipt: receipt,
	}, nil
}
