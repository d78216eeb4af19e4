package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"fact_checker/internal/domain"
	"fact_checker/internal/service"
)

// maxUploadBytes caps a multipart application submission.
const maxUploadBytes = 32 << 20

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	userID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body struct {
		Role domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, fmt.Errorf("decode body: %w", domain.ErrInvalidArgument))
		return
	}

	view, err := s.roles.Promote(r.Context(), caller, userID, body.Role)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	view, err := s.roles.UserView(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUnassignedRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	requests, err := s.requests.Unassigned(r.Context(), caller)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if requests == nil {
		requests = []domain.Request{}
	}

	s.respondJSON(w, http.StatusOK, requests)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var draft service.RequestDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.respondError(w, r, fmt.Errorf("decode body: %w", domain.ErrInvalidArgument))
		return
	}

	request, err := s.requests.Create(r.Context(), caller, draft)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, request)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireIdentity(w, r); !ok {
		return
	}

	requestID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	request, err := s.requests.Get(r.Context(), requestID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, request)
}

func (s *Server) handleClaimRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	requestID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.requests.Claim(r.Context(), caller, requestID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReleaseRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	requestID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.requests.Release(r.Context(), caller, requestID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

type resolveRequest struct {
	RequestID  int64    `json:"request_id"`
	TagIDs     []int64  `json:"tag_ids"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Sources    []string `json:"sources"`
	Articles   []string `json:"articles"`
	IsTruthful bool     `json:"is_truthful"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var body resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, fmt.Errorf("decode body: %w", domain.ErrInvalidArgument))
		return
	}

	draft := domain.EntryDraft{
		Title:      body.Title,
		Content:    body.Content,
		Sources:    body.Sources,
		Articles:   body.Articles,
		IsTruthful: body.IsTruthful,
	}

	entry, err := s.resolution.Resolve(r.Context(), caller, body.RequestID, draft, body.TagIDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.Entry{}
	}

	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entry, err := s.entries.Get(r.Context(), entryID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	entryID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.entries.Upvote(r.Context(), caller, entryID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRemoveUpvote(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	entryID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.entries.RemoveUpvote(r.Context(), caller, entryID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	ranks, err := s.ranking.Ranking(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if ranks == nil {
		ranks = []domain.SourceRank{}
	}

	s.respondJSON(w, http.StatusOK, ranks)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	s.respondJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, fmt.Errorf("decode body: %w", domain.ErrInvalidArgument))
		return
	}

	tag, err := s.tags.Create(r.Context(), caller, body.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	tagID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.tags.Delete(r.Context(), caller, tagID); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// handleSubmitApplication accepts a multipart form: title, content, repeated
// tag_ids fields and any number of files under "documents".
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, fmt.Errorf("parse form: %w", domain.ErrInvalidArgument))
		return
	}

	draft := service.ApplicationDraft{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}

	for _, raw := range r.MultipartForm.Value["tag_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("tag id %q: %w", raw, domain.ErrInvalidArgument))
			return
		}
		draft.TagIDs = append(draft.TagIDs, id)
	}

	for _, header := range r.MultipartForm.File["documents"] {
		file, err := header.Open()
		if err != nil {
			s.respondError(w, r, fmt.Errorf("open upload: %w", err))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.respondError(w, r, fmt.Errorf("read upload: %w", err))
			return
		}
		draft.Documents = append(draft.Documents, service.DocumentUpload{
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	app, err := s.applications.Submit(r.Context(), caller, draft)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, app)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	apps, err := s.applications.ListPending(r.Context(), caller)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}

	s.respondJSON(w, http.StatusOK, apps)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	appID, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	app, err := s.applications.Get(r.Context(), caller, appID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, app)
}
