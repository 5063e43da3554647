package workflow

import "strings"

// legacyAliases maps the duplicate status spellings older backends emitted to
// their canonical value. The aliases exist only at the API boundary; nothing
// inside the transition tables ever sees them.
var legacyAliases = map[string]Status{
	"PENDING":           StatusPendingManager,
	"PENDING_SELF":      StatusSelfEvaluation,
	"SELF_SUBMITTED":    StatusManagerEvaluation,
	"MANAGER_SUBMITTED": StatusHRReview,
	"MANAGER_APPROVED":  StatusPendingHR,
	"MANAGER_REJECTED":  StatusRejected,
}

// Canonical normalizes a raw status string for the given document kind.
// Unknown values are reported, not defaulted: a silent fallback here would
// let a stale client skip stages.
func Canonical(kind Kind, raw string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrUnknownStatus
	}

	status := Status(normalized)
	if alias, ok := legacyAliases[normalized]; ok {
		status = alias
	}

	if !ForKind(kind).Known(status) {
		return "", ErrUnknownStatus
	}
	return status, nil
}
