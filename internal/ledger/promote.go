package ledger

// PromoteFailure - one implied charge that could not be persisted
type PromoteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// PromoteResult - outcome of a batch promotion
type PromoteResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    []PromoteFailure `json:"failed"`
}

// PromoteImpliedCharge writes one implied charge to storage. After it
// succeeds the next materialization finds the record via the matcher and
// does not re-synthesize it.
func PromoteImpliedCharge(tenderID uint, ch ImpliedMfsCharge) error {
	_, err := SaveMfsCharge(tenderID, ch)
	return err
}

// PromoteAllImplied writes every given implied charge. It tries one bulk
// insert first; if that fails it falls back to per-charge inserts so the
// caller learns exactly which charges made it.
func PromoteAllImplied(tenderID uint, charges []ImpliedMfsCharge) PromoteResult {
	result := PromoteResult{
		Succeeded: make([]string, 0, len(charges)),
		Failed:    make([]PromoteFailure, 0),
	}
	if len(charges) == 0 {
		return result
	}

	if _, err := SaveMfsChargesBatch(tenderID, charges); err == nil {
		for _, ch := range charges {
			result.Succeeded = append(result.Succeeded, ch.ID)
		}
		return result
	}

	for _, ch := range charges {
		if _, err := SaveMfsCharge(tenderID, ch); err != nil {
			result.Failed = append(result.Failed, PromoteFailure{ID: ch.ID, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, ch.ID)
	}
	return result
}
