package server

import "net/http"

func (s *Server) initRoutes() {
	// ACCOUNT
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.LoginRateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), s.APIMiddleware(s.RequireAuth())...))

	// PROFILE
	s.RegisterRouteHandler("PATCH "+RouteUpdateDetails, ChainMiddleware(s.UpdateDetailsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteUpdateAvatar, ChainMiddleware(s.UpdateAvatarHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("PATCH "+RouteUpdateCoverImage, ChainMiddleware(s.UpdateCoverImageHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("GET "+RouteChannelProfile, ChainMiddleware(s.ChannelProfileHandler(), s.APIMiddleware(s.OptionalAuth())...))

	// SUBSCRIPTIONS
	s.RegisterRouteHandler("POST "+RouteSubscribe, ChainMiddleware(s.SubscribeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteUnsubscribe, ChainMiddleware(s.UnsubscribeHandler(), s.APIMiddleware(s.RequireAuth())...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))

	// SYSTEM
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	}
	if s.mediaHandler != nil {
		s.RegisterRouteHandler("GET "+RouteMedia, s.mediaHandler)
	}
}
