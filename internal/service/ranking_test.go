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

type RankingServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	entries *mocks.MockEntryStore
	logger  *slog.Logger
}

func (s *RankingServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.entries = mocks.NewMockEntryStore(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (s *RankingServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRankingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RankingServiceTestSuite))
}

func (s *RankingServiceTestSuite) newService(maxRank int) *RankingService {
	return NewRankingService(s.entries, maxRank, s.logger)
}

func (s *RankingServiceTestSuite) TestRanking_DenseRankWithTies() {
	ctx := context.Background()
	service := s.newService(25)

	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{
		"http://a.com/1",
		"http://a.com/2",
		"http://a.com/3",
		"http://www.b.com/1",
		"http://b.com/2",
		"https://B.com/3",
		"http://c.com/1",
	}, nil)

	ranks, err := service.Ranking(ctx)

	s.NoError(err)
	s.Equal([]domain.SourceRank{
		{Rank: 1, Domain: "a.com", Count: 3},
		{Rank: 1, Domain: "b.com", Count: 3},
		{Rank: 2, Domain: "c.com", Count: 1},
	}, ranks)
}

func (s *RankingServiceTestSuite) TestRanking_SkipsMalformedURLs() {
	ctx := context.Background()
	service := s.newService(25)

	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{
		"http://a.com/1",
		"   ",
		"not a url",
		"http://a.com/2",
	}, nil)

	ranks, err := service.Ranking(ctx)

	s.NoError(err)
	s.Equal([]domain.SourceRank{
		{Rank: 1, Domain: "a.com", Count: 2},
	}, ranks)
}

func (s *RankingServiceTestSuite) TestRanking_CutoffKeepsWholeTier() {
	ctx := context.Background()
	service := s.newService(2)

	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{
		"http://a.com/1", "http://a.com/2", "http://a.com/3",
		"http://b.com/1", "http://b.com/2",
		"http://c.com/1", "http://c.com/2",
		"http://d.com/1",
	}, nil)

	ranks, err := service.Ranking(ctx)

	s.NoError(err)
	s.Equal([]domain.SourceRank{
		{Rank: 1, Domain: "a.com", Count: 3},
		{Rank: 2, Domain: "b.com", Count: 2},
		{Rank: 2, Domain: "c.com", Count: 2},
	}, ranks)
}

func (s *RankingServiceTestSuite) TestRanking_ServesCachedSnapshot() {
	ctx := context.Background()
	service := s.newService(25)

	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{"http://a.com/1"}, nil).Times(1)

	first, err := service.Ranking(ctx)
	s.NoError(err)

	second, err := service.Ranking(ctx)
	s.NoError(err)
	s.Equal(first, second)
}

func (s *RankingServiceTestSuite) TestRefresh_SwapsSnapshot() {
	ctx := context.Background()
	service := s.newService(25)

	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{"http://a.com/1"}, nil)
	s.entries.EXPECT().FalseEntryArticles(ctx).Return([]string{
		"http://b.com/1", "http://b.com/2",
	}, nil)

	_, err := service.Refresh(ctx)
	s.NoError(err)

	snap, err := service.Refresh(ctx)
	s.NoError(err)
	s.Equal([]domain.SourceRank{{Rank: 1, Domain: "b.com", Count: 2}}, snap.Ranks)

	ranks, err := service.Ranking(ctx)
	s.NoError(err)
	s.Equal(snap.Ranks, ranks)
}

func TestSourceDomain(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"http://www.Example.COM/path", "example.com", true},
		{"https://news.example.com/a?b=c", "news.example.com", true},
		{"http://www.", "", false},
		{"", "", false},
		{"://bad", "", false},
	}

	for _, tc := range cases {
		got, ok := sourceDomain(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("sourceDomain(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
