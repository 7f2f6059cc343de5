package tracing

// Span attribute keys for registration resource calls.
const (
	AttrTenant         = "registration.tenant"
	AttrRegistrationID = "registration.id"
	AttrHTTPMethod     = "http.request.method"
	AttrURL            = "url.full"
	AttrHTTPStatus     = "http.response.status_code"
	AttrResultCount    = "registration.count"
)

// Span names, one per data access operation.
const (
	SpanList   = "registrations.list"
	SpanCreate = "registrations.create"
	SpanDelete = "registrations.delete"
)
