package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fact_checker/internal/domain"
	"fact_checker/internal/service/mocks"
)

type ApplicationServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	applications *mocks.MockApplicationStore
	tags         *mocks.MockTagStore
	blobs        *mocks.MockBlobStore
	txManager    *mocks.MockTransactionManager

	service *ApplicationService

	staff    domain.Identity
	redactor domain.Identity
	standard domain.Identity
}

func (s *ApplicationServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.applications = mocks.NewMockApplicationStore(s.ctrl)
	s.tags = mocks.NewMockTagStore(s.ctrl)
	s.blobs = mocks.NewMockBlobStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.staff = domain.Identity{UserID: 1, Role: domain.RoleStandard, Staff: true}
	s.redactor = domain.Identity{UserID: 2, Role: domain.RoleRedactor}
	s.standard = domain.Identity{UserID: 3, Role: domain.RoleStandard}

	s.service = NewApplicationService(s.applications, s.tags, s.blobs, s.txManager, logger)
}

func (s *ApplicationServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}

func (s *ApplicationServiceTestSuite) expectTransaction(ctx context.Context) {
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func validApplicationDraft() ApplicationDraft {
	return ApplicationDraft{
		Title:   "credentials",
		Content: "ten years covering health policy",
		TagIDs:  []int64{1},
	}
}

func (s *ApplicationServiceTestSuite) TestSubmit_RedactorDenied() {
	ctx := context.Background()

	_, err := s.service.Submit(ctx, s.redactor, validApplicationDraft())

	s.ErrorIs(err, domain.ErrPermissionDenied)
}

func (s *ApplicationServiceTestSuite) TestSubmit_RequiresTags() {
	ctx := context.Background()
	draft := validApplicationDraft()
	draft.TagIDs = nil

	_, err := s.service.Submit(ctx, s.standard, draft)

	s.ErrorIs(err, domain.ErrInvalidArgument)
}

func (s *ApplicationServiceTestSuite) TestSubmit_UnknownTag() {
	ctx := context.Background()

	s.tags.EXPECT().ExistingIDs(ctx, []int64{1}).Return(nil, nil)

	_, err := s.service.Submit(ctx, s.standard, validApplicationDraft())

	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ApplicationServiceTestSuite) TestSubmit_StoresDocuments() {
	ctx := context.Background()
	draft := validApplicationDraft()
	draft.Documents = []DocumentUpload{
		{ContentType: "application/pdf", Data: []byte("diploma")},
		{ContentType: "image/png", Data: []byte("press card")},
	}

	s.tags.EXPECT().ExistingIDs(ctx, []int64{1}).Return([]int64{1}, nil)
	s.expectTransaction(ctx)
	s.applications.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, app *domain.Application) (int64, error) {
			s.Equal(int64(3), app.AuthorID)
			app.ID = 9
			return 9, nil
		},
	)
	s.applications.EXPECT().LinkTags(ctx, int64(9), []int64{1}).Return(nil)

	keys := make(map[string]bool)
	s.blobs.EXPECT().Save(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, key string, _ []byte) error {
			keys[key] = true
			return nil
		},
	).Times(2)
	s.applications.EXPECT().AddDocument(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, doc *domain.ApplicationDocument) error {
			s.Equal(int64(9), doc.ApplicationID)
			s.True(keys[doc.StorageKey])
			return nil
		},
	).Times(2)

	app, err := s.service.Submit(ctx, s.standard, draft)

	s.NoError(err)
	s.Equal(int64(9), app.ID)
	s.Equal([]int64{1}, app.RequestedTagIDs)
	s.Len(keys, 2)
}

func (s *ApplicationServiceTestSuite) TestSubmit_BlobFailureAbortsTransaction() {
	ctx := context.Background()
	draft := validApplicationDraft()
	draft.Documents = []DocumentUpload{{ContentType: "application/pdf", Data: []byte("diploma")}}

	s.tags.EXPECT().ExistingIDs(ctx, []int64{1}).Return([]int64{1}, nil)
	s.expectTransaction(ctx)
	s.applications.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, app *domain.Application) (int64, error) {
			app.ID = 9
			return 9, nil
		},
	)
	s.applications.EXPECT().LinkTags(ctx, int64(9), []int64{1}).Return(nil)
	s.blobs.EXPECT().Save(ctx, gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)

	_, err := s.service.Submit(ctx, s.standard, draft)

	s.Error(err)
}

func (s *ApplicationServiceTestSuite) TestListPending_StaffOnly() {
	ctx := context.Background()

	_, err := s.service.ListPending(ctx, s.standard)

	s.ErrorIs(err, domain.ErrPermissionDenied)
}

func (s *ApplicationServiceTestSuite) TestListPending_Staff() {
	ctx := context.Background()
	pending := []domain.Application{{ID: 9, AuthorID: 3}}

	s.applications.EXPECT().ListPending(ctx).Return(pending, nil)

	apps, err := s.service.ListPending(ctx, s.staff)

	s.NoError(err)
	s.Equal(pending, apps)
}

func (s *ApplicationServiceTestSuite) TestGet_AuthorSeesOwn() {
	ctx := context.Background()
	app := &domain.Application{ID: 9, AuthorID: 3}

	s.applications.EXPECT().GetByID(ctx, int64(9)).Return(app, nil)

	got, err := s.service.Get(ctx, s.standard, 9)

	s.NoError(err)
	s.Equal(app, got)
}

func (s *ApplicationServiceTestSuite) TestGet_StrangerDenied() {
	ctx := context.Background()

	s.applications.EXPECT().GetByID(ctx, int64(9)).Return(&domain.Application{ID: 9, AuthorID: 7}, nil)

	_, err := s.service.Get(ctx, s.standard, 9)

	s.ErrorIs(err, domain.ErrPermissionDenied)
}

func (s *ApplicationServiceTestSuite) TestGet_StaffSeesAny() {
	ctx := context.Background()
	app := &domain.Application{ID: 9, AuthorID: 7}

	s.applications.EXPECT().GetByID(ctx, int64(9)).Return(app, nil)

	got, err := s.service.Get(ctx, s.staff, 9)

	s.NoError(err)
	s.Equal(app, got)
}
