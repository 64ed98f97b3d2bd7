package constant

const (
	ChatTurnRoleUser      = "user"
	ChatTurnRoleAssistant = "assistant"

	// PricingTablePlaceholder marks where a pricing table node is spliced
	// into the synthesized document. The frontend editor renders it as an
	// editable table extension.
	PricingTablePlaceholder = "[editablePricingTable]"

	// Canonical governance role. Every pricing table carries exactly one
	// row for this role regardless of how the assistant named its variants.
	CanonicalAccountRole            = "Account Management - (Account Manager)"
	CanonicalAccountRoleRate        = 180.0
	CanonicalAccountRoleHours       = 8.0
	CanonicalAccountRoleDescription = "Client comms & governance"

	// Financial defaults
	DefaultGSTPercent      = 10.0
	MaxDiscountPercent     = 50.0
	DefaultScopeName       = "Default Scope"
	NoPricingNoticeMessage = "No placeholder tables were inserted. The response did not contain a usable pricing structure."

	// Stream event types emitted by the assistant backend
	StreamEventChunk = "textResponseChunk"
	StreamEventFinal = "textResponse"
	StreamEventAbort = "abort"
)
