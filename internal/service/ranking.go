package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"fact_checker/internal/domain"
)

// RankingService computes the misinformation-source leaderboard: a
// dense-ranked frequency count of the domains appearing as articles of
// untruthful entries. A cached snapshot serves reads; the scheduler
// refreshes it periodically.
type RankingService struct {
	entries EntryStore
	maxRank int
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot *domain.RankingSnapshot
}

func NewRankingService(entries EntryStore, maxRank int, logger *slog.Logger) *RankingService {
	return &RankingService{
		entries: entries,
		maxRank: maxRank,
		logger:  logger.With("component", "ranking"),
	}
}

// Ranking returns the current leaderboard, computing it on demand when no
// snapshot has been taken yet.
func (s *RankingService) Ranking(ctx context.Context) ([]domain.SourceRank, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap != nil {
		return snap.Ranks, nil
	}

	snap, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Ranks, nil
}

// Refresh recomputes the leaderboard and swaps in the new snapshot.
func (s *RankingService) Refresh(ctx context.Context) (*domain.RankingSnapshot, error) {
	start := time.Now()

	ranks, err := s.compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh ranking: %w", err)
	}

	snap := &domain.RankingSnapshot{
		Ranks:       ranks,
		GeneratedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.Info("ranking refreshed",
		"domains", len(ranks),
		"duration", time.Since(start),
	)

	return snap, nil
}

func (s *RankingService) compute(ctx context.Context) ([]domain.SourceRank, error) {
	urls, err := s.entries.FalseEntryArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load false entry articles: %w", err)
	}

	counts := make(map[string]int)
	for _, raw := range urls {
		domainName, ok := sourceDomain(raw)
		if !ok {
			continue
		}
		counts[domainName]++
	}

	ranked := make([]domain.SourceRank, 0, len(counts))
	for domainName, count := range counts {
		ranked = append(ranked, domain.SourceRank{Domain: domainName, Count: count})
	}

	// Highest count first; ties broken by domain so the output is
	// deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Domain < ranked[j].Domain
	})

	// Dense rank: ties share a rank, the next distinct count increments it
	// by one. The cutoff keeps the top maxRank rank tiers, so a tie on the
	// last tier is kept whole.
	result := ranked[:0]
	rank := 0
	prevCount := -1
	for _, row := range ranked {
		if row.Count != prevCount {
			rank++
			prevCount = row.Count
		}
		if rank > s.maxRank {
			break
		}
		row.Rank = rank
		result = append(result, row)
	}

	return result, nil
}

// sourceDomain extracts the lower-cased host of a URL, stripping a leading
// "www.". Malformed or hostless URLs are skipped rather than failing the
// whole scan.
func sourceDomain(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", false
	}

	return host, true
}
