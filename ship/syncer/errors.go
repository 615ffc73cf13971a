package syncer

import "errors"

// Fatal error kinds (spec §7): these escalate to a single process-wide
// fatal signal instead of triggering reconnect.
var (
	ErrHistoryPruned        = errors.New("syncer: requested start block is no longer available upstream (history pruned)")
	ErrRetryBudgetExhausted = errors.New("syncer: retry budget exhausted")
	ErrUnexpectedEmptyBlock = errors.New("syncer: blocks_result with no this_block received inside an active subscription")
)
