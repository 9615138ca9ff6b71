package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Account routes
	RouteRegister       = "/api/v1/users/register"
	RouteLogin          = "/api/v1/users/login"
	RouteLogout         = "/api/v1/users/logout"
	RouteRefreshToken   = "/api/v1/users/refresh-token"
	RouteChangePassword = "/api/v1/users/change-password"
	RouteCurrentUser    = "/api/v1/users/get-current-user"

	// Profile routes
	RouteUpdateDetails    = "/api/v1/users/update-details"
	RouteUpdateAvatar     = "/api/v1/users/update-avatar"
	RouteUpdateCoverImage = "/api/v1/users/update-coverImage"
	RouteChannelProfile   = "/api/v1/users/channel/{username}"

	// Subscription routes
	RouteSubscribe   = "/api/v1/subscriptions/subscribe/{channelID}"
	RouteUnsubscribe = "/api/v1/subscriptions/unsubscribe/{channelID}"

	// System routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
	RouteMedia   = "/media/{path...}"
)
