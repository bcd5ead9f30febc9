package constants

// Named permissions queried against the Authorization Service for
// governance-gated operations. The system owner bypasses these.
const (
	ManageSystem   = "manage_system"
	PurgeProposals = "purge_proposals"
)
