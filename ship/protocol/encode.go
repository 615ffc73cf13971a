package protocol

// Request tag values, the upstream's "request" variant index.
const (
	tagGetStatusRequestV0 = 0
	tagGetBlocksRequestV0 = 1
)

// EncodeGetStatusRequest serializes an empty get_status_request_v0.
func EncodeGetStatusRequest() []byte {
	return []byte{tagGetStatusRequestV0}
}

// EncodeGetBlocksRequest serializes req as a get_blocks_request_v0, writing
// every field as given. The documented defaults (spec §4.2: end_block_num
// and max_messages_in_flight pinned to their max values, have_positions
// empty, irreversible_only false, fetch_block and fetch_traces true,
// fetch_deltas false) are filled in by DefaultGetBlocksRequest, not here.
func EncodeGetBlocksRequest(req GetBlocksRequestV0) []byte {
	out := make([]byte, 0, 32)
	out = append(out, tagGetBlocksRequestV0)
	out = putU32(out, req.StartBlockNum)
	out = putU32(out, req.EndBlockNum)
	out = putU32(out, req.MaxMessagesInFlight)
	out = putVaruint32(out, uint32(len(req.HavePositions)))
	for _, p := range req.HavePositions {
		out = putU32(out, p.BlockNum)
		out = append(out, p.BlockID[:]...)
	}
	out = putBool(out, req.IrreversibleOnly)
	out = putBool(out, req.FetchBlock)
	out = putBool(out, req.FetchTraces)
	out = putBool(out, req.FetchDeltas)
	return out
}

// DefaultGetBlocksRequest builds the GetBlocksRequestV0 the sync
// controller issues on every (re)subscription (spec §4.2, §4.4 step 4),
// overriding only the start height.
func DefaultGetBlocksRequest(startBlockNum uint32) GetBlocksRequestV0 {
	return GetBlocksRequestV0{
		StartBlockNum:       startBlockNum,
		EndBlockNum:         ^uint32(0),
		MaxMessagesInFlight: ^uint32(0),
		HavePositions:       nil,
		IrreversibleOnly:    false,
		FetchBlock:          true,
		FetchTraces:         true,
		FetchDeltas:         false,
	}
}
