package server

import (
	"log/slog"
	"net/http"

	"fact_checker/internal/service"
)

// Server is the HTTP boundary. Authentication happens upstream; the gateway
// forwards the caller's user id and this layer resolves it to an identity
// before any core call.
type Server struct {
	users        service.UserStore
	roles        *service.RoleService
	requests     *service.RequestService
	resolution   *service.ResolutionService
	entries      *service.EntryService
	ranking      *service.RankingService
	tags         *service.TagService
	applications *service.ApplicationService
	logger       *slog.Logger
}

func New(
	users service.UserStore,
	roles *service.RoleService,
	requests *service.RequestService,
	resolution *service.ResolutionService,
	entries *service.EntryService,
	ranking *service.RankingService,
	tags *service.TagService,
	applications *service.ApplicationService,
	logger *slog.Logger,
) *Server {
	return &Server{
		users:        users,
		roles:        roles,
		requests:     requests,
		resolution:   resolution,
		entries:      entries,
		ranking:      ranking,
		tags:         tags,
		applications: applications,
		logger:       logger.With("component", "http"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("PATCH /users/{id}/role", s.handleChangeRole)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)

	mux.HandleFunc("GET /requests/unassigned", s.handleUnassignedRequests)
	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)
	mux.HandleFunc("POST /requests/{id}/claim", s.handleClaimRequest)
	mux.HandleFunc("POST /requests/{id}/release", s.handleReleaseRequest)

	mux.HandleFunc("POST /entries", s.handleResolve)
	mux.HandleFunc("GET /entries", s.handleListEntries)
	mux.HandleFunc("GET /entries/{id}", s.handleGetEntry)
	mux.HandleFunc("POST /entries/{id}/upvote", s.handleUpvote)
	mux.HandleFunc("DELETE /entries/{id}/upvote", s.handleRemoveUpvote)

	mux.HandleFunc("GET /ranking", s.handleRanking)

	mux.HandleFunc("GET /categories", s.handleListTags)
	mux.HandleFunc("POST /categories", s.handleCreateTag)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteTag)

	mux.HandleFunc("POST /applications", s.handleSubmitApplication)
	mux.HandleFunc("GET /applications", s.handleListApplications)
	mux.HandleFunc("GET /applications/{id}", s.handleGetApplication)

	return s.withIdentity(mux)
}
