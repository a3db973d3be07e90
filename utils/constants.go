package utils

// ContextKey is the type for request metadata keys carried into flows.
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Placeholder values for missing enrichment data.
const (
	// AnonymousDisplayName is substituted when a user never set a display name.
	AnonymousDisplayName = "Anonymous"
)

// Pagination bounds shared by list endpoints.
const (
	DefaultConversationPageSize = 50
	MaxConversationPageSize     = 200
)

// CORSMaxAge is how long browsers may cache preflight responses, in seconds.
const CORSMaxAge = 86400
