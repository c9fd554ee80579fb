package handler

const (
	// APIPrefix is the prefix of every JSON route.
	APIPrefix = "/api"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ErrNilDepsFatalLogMsg is used if the router or a dependency is nil.
	ErrNilDepsFatalLogMsg = "router or handler dependencies are nil"

	// MsgInvalidBody is returned for bodies that are not the expected JSON.
	MsgInvalidBody = "invalid request body"
)
