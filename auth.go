package advisor

import "strings"

// Authenticate validates a submitted identifier against the roster.
// The guest identity bypasses the roster and yields GuestRecord. Any other
// input must parse as a numeric identifier; parse failures and unknown
// identifiers both report false. When identifiers repeat, the first match wins.
func Authenticate(r *Roster, submitted string) (StudentRecord, bool) {
	submitted = strings.TrimSpace(submitted)
	if IsGuestID(submitted) {
		return GuestRecord(), true
	}
	id, ok := ParseSubmittedID(submitted)
	if !ok {
		return StudentRecord{}, false
	}
	return r.Lookup(id)
}

// IsGuestID reports whether s names the guest bypass identity.
func IsGuestID(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), GuestID)
}
