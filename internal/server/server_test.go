package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fact_checker/internal/domain"
	"fact_checker/internal/service"
	"fact_checker/internal/service/mocks"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	users        *mocks.MockUserStore
	tags         *mocks.MockTagStore
	assignments  *mocks.MockAssignmentStore
	applications *mocks.MockApplicationStore
	requests     *mocks.MockRequestStore
	entries      *mocks.MockEntryStore
	blobs        *mocks.MockBlobStore
	txManager    *mocks.MockTransactionManager
	publisher    *mocks.MockPublisher

	handler http.Handler
}

func (s *ServerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.users = mocks.NewMockUserStore(s.ctrl)
	s.tags = mocks.NewMockTagStore(s.ctrl)
	s.assignments = mocks.NewMockAssignmentStore(s.ctrl)
	s.applications = mocks.NewMockApplicationStore(s.ctrl)
	s.requests = mocks.NewMockRequestStore(s.ctrl)
	s.entries = mocks.NewMockEntryStore(s.ctrl)
	s.blobs = mocks.NewMockBlobStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	roleService := service.NewRoleService(s.users, s.applications, s.assignments, s.txManager, logger)
	requestService := service.NewRequestService(s.requests, s.tags, s.txManager, logger)
	resolutionService := service.NewResolutionService(s.requests, s.entries, s.tags, s.txManager, s.publisher, logger)
	entryService := service.NewEntryService(s.entries, logger)
	rankingService := service.NewRankingService(s.entries, 25, logger)
	tagService := service.NewTagService(s.tags, s.assignments, s.requests, s.entries, s.applications, s.txManager, logger)
	applicationService := service.NewApplicationService(s.applications, s.tags, s.blobs, s.txManager, logger)

	srv := New(
		s.users,
		roleService,
		requestService,
		resolutionService,
		entryService,
		rankingService,
		tagService,
		applicationService,
		logger,
	)
	s.handler = srv.Handler()
}

func (s *ServerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) expectCaller(id int64, role domain.Role, staff bool) {
	s.users.EXPECT().GetByID(gomock.Any(), id).Return(&domain.User{
		ID:    id,
		Role:  role,
		Staff: staff,
	}, nil)
}

func (s *ServerTestSuite) TestProtectedRoute_WithoutIdentity() {
	req := httptest.NewRequest(http.MethodGet, "/requests/unassigned", nil)

	rec := s.do(req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestUnknownUserHeader() {
	s.users.EXPECT().GetByID(gomock.Any(), int64(99)).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/requests/unassigned", nil)
	req.Header.Set("X-User-ID", "99")

	rec := s.do(req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestMalformedUserHeader() {
	req := httptest.NewRequest(http.MethodGet, "/requests/unassigned", nil)
	req.Header.Set("X-User-ID", "not-a-number")

	rec := s.do(req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestRanking_Public() {
	s.entries.EXPECT().FalseEntryArticles(gomock.Any()).Return([]string{
		"http://a.com/1", "http://a.com/2",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/ranking", nil)

	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)

	var ranks []domain.SourceRank
	s.NoError(json.Unmarshal(rec.Body.Bytes(), &ranks))
	s.Equal([]domain.SourceRank{{Rank: 1, Domain: "a.com", Count: 2}}, ranks)
}

func (s *ServerTestSuite) TestListCategories_Public() {
	s.tags.EXPECT().List(gomock.Any()).Return([]domain.Tag{{ID: 1, Name: "politics"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)

	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[{"id":1,"name":"politics"}]`, rec.Body.String())
}

func (s *ServerTestSuite) TestCreateRequest() {
	s.expectCaller(3, domain.RoleStandard, false)

	req := httptest.NewRequest(http.MethodPost, "/requests",
		strings.NewReader(`{"title":"","content":""}`))
	req.Header.Set("X-User-ID", "3")

	rec := s.do(req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestGetRequest_NotFound() {
	s.expectCaller(3, domain.RoleStandard, false)
	s.requests.EXPECT().GetByID(gomock.Any(), int64(42)).Return(nil, domain.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/requests/42", nil)
	req.Header.Set("X-User-ID", "3")

	rec := s.do(req)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestClaim_Conflict() {
	redactorID := int64(2)
	holderID := int64(7)

	s.expectCaller(2, domain.RoleRedactor, false)
	s.requests.EXPECT().Claim(gomock.Any(), int64(10), redactorID).Return(false, nil)
	s.requests.EXPECT().GetByID(gomock.Any(), int64(10)).Return(&domain.Request{
		ID:         10,
		RedactorID: &holderID,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/requests/10/claim", nil)
	req.Header.Set("X-User-ID", "2")

	rec := s.do(req)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ServerTestSuite) TestChangeRole_NonStaff() {
	s.expectCaller(3, domain.RoleStandard, false)

	body := bytes.NewReader([]byte(`{"role":"redactor"}`))
	req := httptest.NewRequest(http.MethodPatch, "/users/5/role", body)
	req.Header.Set("X-User-ID", "3")

	rec := s.do(req)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestChangeRole_BadID() {
	s.expectCaller(1, domain.RoleStandard, true)

	body := bytes.NewReader([]byte(`{"role":"redactor"}`))
	req := httptest.NewRequest(http.MethodPatch, "/users/abc/role", body)
	req.Header.Set("X-User-ID", "1")

	rec := s.do(req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestListEntries_EmptyIsArray() {
	s.entries.EXPECT().List(gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)

	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("[]\n", rec.Body.String())
}

func (s *ServerTestSuite) TestUpvote() {
	s.expectCaller(3, domain.RoleStandard, false)
	s.entries.EXPECT().Upvote(gomock.Any(), int64(4), int64(3)).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/entries/4/upvote", nil)
	req.Header.Set("X-User-ID", "3")

	rec := s.do(req)

	s.Equal(http.StatusNoContent, rec.Code)
}
