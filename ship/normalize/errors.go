package normalize

import (
	"errors"
	"fmt"
)

// ErrInvariantViolated is the sentinel every normalization invariant
// failure wraps (spec §7: "InvariantViolated — fatal to the process").
// Callers distinguish the specific failure with errors.Is against the
// more specific sentinels below, or just treat any errors.Is(err,
// ErrInvariantViolated) as fatal.
var ErrInvariantViolated = errors.New("normalize: invariant violated")

var (
	errMissingReceipt         = errors.New("action trace has no receipt")
	errZeroCreatorOrdinal     = errors.New("evmtx creator_action_ordinal is zero")
	errParentOrdinalOutOfRange = errors.New("evmtx parent action index is not less than current index")
	errMissingParentReceipt   = errors.New("evmtx parent action has no receipt")
	errMultipleConfigChange   = errors.New("multiple configchange actions in one block")
	errConfigChangeNotFirst   = errors.New("configchange is not the sole, first action in the block")
	errMixedWithConfigChange  = errors.New("configchange mixed with other actions in the same block")
	errMixedActionNames       = errors.New("pushtx and evmtx found in the same transaction")
	errMixedBlockActionNames  = errors.New("pushtx and evmtx found in the same block")
)

func invariantErr(cause error) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolated, cause)
}
