package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/jrsteele09/videotube-server/auth"
	"github.com/jrsteele09/videotube-server/internal/config"
	"github.com/jrsteele09/videotube-server/internal/metrics"
	"github.com/jrsteele09/videotube-server/ratelimit"
	"github.com/jrsteele09/videotube-server/subscriptions"
	"github.com/jrsteele09/videotube-server/token"
	"github.com/jrsteele09/videotube-server/users"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the server routes requests to.
type Dependencies struct {
	Accounts      *auth.AccountService
	Subscriptions *subscriptions.Service
	Tokens        *token.Manager
	Users         users.UserRepo
	LoginLimiter  ratelimit.Limiter // Optional
	Metrics       *metrics.Metrics  // Optional
	MediaHandler  http.Handler      // Optional, serves locally stored media
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	accounts      *auth.AccountService
	subscriptions *subscriptions.Service
	tokens        *token.Manager
	users         users.UserRepo
	loginLimiter  ratelimit.Limiter
	metrics       *metrics.Metrics
	mediaHandler  http.Handler
	proxies       config.TrustedProxies
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if deps.Accounts == nil {
		return nil, fmt.Errorf("[Server New] account service is required")
	}
	if deps.Subscriptions == nil {
		return nil, fmt.Errorf("[Server New] subscription service is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("[Server New] token manager is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("[Server New] users repo is required")
	}

	proxies, err := config.GetTrustedProxies()
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		accounts:      deps.Accounts,
		subscriptions: deps.Subscriptions,
		tokens:        deps.Tokens,
		users:         deps.Users,
		loginLimiter:  deps.LoginLimiter,
		metrics:       deps.Metrics,
		mediaHandler:  deps.MediaHandler,
		proxies:       proxies,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}

// clientIP returns the address the request came from. X-Forwarded-For is
// only read when the direct peer is a trusted proxy, and then the rightmost
// hop that is not itself a trusted proxy wins.
func (s *Server) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !s.proxies.Contains(peer) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !s.proxies.Contains(hop) {
			return hop.Unmap().String()
		}
	}
	return host
}
