package normalize

import (
	"sort"

	"github.com/vaultaevm/ship-receiver/common"
	"github.com/vaultaevm/ship-receiver/ship/protocol"
)

// Normalize transforms a decoded BlocksResultV0 into a NativeBlock (spec
// §4.3). It returns (nil, nil) when this_block is absent — a no-op
// notification frame, not an error.
func Normalize(res *protocol.BlocksResultV0, coreAccount common.Name) (*NativeBlock, error) {
	if res.ThisBlock == nil {
		return nil, nil
	}

	block := &NativeBlock{
		BlockNum: res.ThisBlock.BlockNum,
		ID:       res.ThisBlock.BlockID,
		LIB:      res.LastIrreversible.BlockNum,
	}
	if res.PrevBlock != nil {
		block.Prev = res.PrevBlock.BlockID
	}
	if res.Block != nil {
		sb, err := protocol.DecodeSignedBlock(res.Block)
		if err != nil {
			return nil, err
		}
		block.Timestamp = sb.TimestampTicks
	}

	if res.Traces != nil {
		traces, err := protocol.DecodeTransactionTraces(res.Traces)
		if err != nil {
			return nil, err
		}
		for _, trace := range traces {
			if trace.Status != protocol.TransactionStatusExecuted {
				continue
			}
			if err := appendTransaction(block, trace, coreAccount); err != nil {
				return nil, err
			}
		}
	}

	return block, nil
}

// appendTransaction mirrors the original source's append_to_block: locate the
// transaction's search name (pushtx vs evmtx, decided by the first evmtx
// action present), extract the matching action traces into an
// ascending-global_sequence ordered map, and fold them into the block
// under the §3 invariants.
func appendTransaction(block *NativeBlock, trace protocol.TransactionTraceV0, coreAccount common.Name) error {
	target := protocol.PushTxName
	for _, act := range trace.ActionTraces {
		if act.Receiver == coreAccount && act.Act.Name == protocol.EvmTxName {
			target = protocol.EvmTxName
			break
		}
	}

	ordered := make(map[uint64]protocol.ActionTraceV0)
	for j, act := range trace.ActionTraces {
		if act.Receiver != coreAccount {
			continue
		}
		if act.Act.Name != target && act.Act.Name != protocol.ConfigChangeName {
			continue
		}
		if act.Receipt == nil {
			return invariantErr(errMissingReceipt)
		}

		var globalSeq uint64
		switch act.Act.Name {
		case protocol.EvmTxName:
			if act.CreatorActionOrdinal == 0 {
				return invariantErr(errZeroCreatorOrdinal)
			}
			parentIdx := int(act.CreatorActionOrdinal) - 1
			if parentIdx >= j {
				return invariantErr(errParentOrdinalOutOfRange)
			}
			parent := trace.ActionTraces[parentIdx]
			if parent.Receipt == nil {
				return invariantErr(errMissingParentReceipt)
			}
			globalSeq = parent.Receipt.GlobalSequence
		case protocol.ConfigChangeName:
			globalSeq = 0
		default:
			globalSeq = act.Receipt.GlobalSequence
		}
		ordered[globalSeq] = act // last-write-wins on duplicate keys, per §9 design note
	}

	if len(ordered) == 0 {
		return nil
	}

	keys := make([]uint64, 0, len(ordered))
	for k := range ordered {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var (
		seenName common.Name
		haveName bool
	)
	nativeTrx := NativeTrx{ID: trace.ID, CPUUsageUS: trace.CPUUsageUS, Elapsed: trace.Elapsed}

	for _, k := range keys {
		act := ordered[k]
		action := NativeAction{
			Ordinal:  act.ActionOrdinal,
			Receiver: act.Receiver,
			Account:  act.Act.Account,
			Name:     act.Act.Name,
			Data:     act.Act.Data,
		}

		if action.Name == protocol.ConfigChangeName {
			if block.NewConfig != nil {
				return invariantErr(errMultipleConfigChange)
			}
			if len(nativeTrx.Actions) > 0 || len(block.Transactions) > 0 {
				return invariantErr(errConfigChangeNotFirst)
			}
			block.NewConfig = &action
			continue
		}

		if block.NewConfig != nil {
			return invariantErr(errMixedWithConfigChange)
		}
		if haveName && action.Name != seenName {
			return invariantErr(errMixedActionNames)
		}
		seenName, haveName = action.Name, true
		nativeTrx.Actions = append(nativeTrx.Actions, action)
	}

	if len(nativeTrx.Actions) == 0 {
		// Configchange-only transaction: per §8, new_config present implies
		// transactions stays empty.
		return nil
	}

	if len(block.Transactions) > 0 {
		prevLast := block.Transactions[len(block.Transactions)-1]
		curLast := nativeTrx.Actions[len(nativeTrx.Actions)-1]
		if prevLast.Actions[len(prevLast.Actions)-1].Name != curLast.Name {
			return invariantErr(errMixedBlockActionNames)
		}
	}
	block.Transactions = append(block.Transactions, nativeTrx)
	return nil
}
