package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Rose003/PaymentFlow33-sub001/internal/domain"
	"github.com/Rose003/PaymentFlow33-sub001/internal/repository"
)

// StatsCache is the slice of the redis client the dashboard needs: snapshot
// storage plus the per-owner version counters.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type ReceivableLister interface {
	List(ctx context.Context, f repository.ReceivablesFilter) ([]domain.Receivable, error)
}

type ClientLister interface {
	List(ctx context.Context, ownerIDs []string) ([]domain.Client, error)
}

type InviterResolver interface {
	ListInviterIDs(ctx context.Context, email string) ([]string, error)
}

// ReminderStepCounts is the fixed-cardinality histogram over the five exact
// escalation labels. Receivables with any other status are not counted here,
// so the buckets do not have to sum to TotalReceivables.
type ReminderStepCounts struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`
	Final  int `json:"final"`
	Legal  int `json:"legal"`
}

type Stats struct {
	TotalClients           int                `json:"totalClients"`
	ClientsNeedingReminder int                `json:"clientsNeedingReminder"`
	TotalReceivables       int                `json:"totalReceivables"`
	TotalAmount            float64            `json:"totalAmount"`
	OverdueAmount          float64            `json:"overdueAmount"`
	AveragePaymentDelay    int                `json:"averagePaymentDelay"`
	ReminderSteps          ReminderStepCounts `json:"reminderSteps"`
}

// ComputeStats derives the dashboard summary from a full snapshot of the
// account's receivables and clients. Pure: same input, same output.
func ComputeStats(receivables []domain.Receivable, clientList []domain.Client, now time.Time) Stats {
	stats := Stats{
		TotalClients:     len(clientList),
		TotalReceivables: len(receivables),
	}

	var (
		paidDelaySum   float64
		paidCount      int
		needByClientID = map[string]bool{}
	)

	for _, r := range receivables {
		stats.TotalAmount += r.Amount

		if r.Overdue(now) {
			stats.OverdueAmount += r.Amount
		}

		if r.Status == domain.StatusPaid {
			days := r.UpdatedAt.Sub(r.DueDate).Hours() / 24
			if days < 0 {
				days = 0
			}
			paidDelaySum += days
			paidCount++
		} else if r.ClientID != "" {
			if step := domain.ClassifyStep(r.DueDate, now, r.Client); step != nil {
				needByClientID[r.ClientID] = true
			}
		}

		switch r.Status {
		case domain.StatusReminder1:
			stats.ReminderSteps.First++
		case domain.StatusReminder2:
			stats.ReminderSteps.Second++
		case domain.StatusReminder3:
			stats.ReminderSteps.Third++
		case domain.StatusFinalNotice:
			stats.ReminderSteps.Final++
		case domain.StatusLegal:
			stats.ReminderSteps.Legal++
		}
	}

	if paidCount > 0 {
		stats.AveragePaymentDelay = int(math.Round(paidDelaySum / float64(paidCount)))
	}

	stats.ClientsNeedingReminder = len(needByClientID)

	return stats
}

type DashboardService struct {
	receivables ReceivableLister
	clientRepo  ClientLister
	inviters    InviterResolver
	redis       StatsCache
}

func NewDashboardService(
	receivables ReceivableLister,
	clientRepo ClientLister,
	inviters InviterResolver,
	redis StatsCache,
) *DashboardService {
	return &DashboardService{
		receivables: receivables,
		clientRepo:  clientRepo,
		inviters:    inviters,
		redis:       redis,
	}
}

// ResolveOwnerIDs returns the tenant-scoping set for a user: their own id plus
// the ids of every account that invited their email.
func (s *DashboardService) ResolveOwnerIDs(ctx context.Context, userID, email string) ([]string, error) {
	ownerIDs := []string{userID}

	inviterIDs, err := s.inviters.ListInviterIDs(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve inviter ids: %w", err)
	}

	for _, id := range inviterIDs {
		if id != userID {
			ownerIDs = append(ownerIDs, id)
		}
	}

	return ownerIDs, nil
}

type cachedStats struct {
	Version int64 `json:"version"`
	Stats   Stats `json:"stats"`
}

const statsCacheTTL = 5 * time.Minute

// GetStats computes the dashboard summary for the user's owner-id set.
// Snapshots are cached in redis behind a monotonically increasing version
// counter bumped on every mutation, so a stale snapshot can never be served
// over newer state.
func (s *DashboardService) GetStats(ctx context.Context, userID, email string) (Stats, error) {
	ownerIDs, err := s.ResolveOwnerIDs(ctx, userID, email)
	if err != nil {
		return Stats{}, err
	}

	version := s.currentVersion(ctx, ownerIDs)

	cacheKey := "stats:" + userID
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, cacheKey); err == nil {
			var cached cachedStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.Version == version {
				return cached.Stats, nil
			}
		}
	}

	receivables, err := s.receivables.List(ctx, repository.ReceivablesFilter{OwnerIDs: ownerIDs})
	if err != nil {
		return Stats{}, fmt.Errorf("load receivables: %w", err)
	}

	clientList, err := s.clientRepo.List(ctx, ownerIDs)
	if err != nil {
		return Stats{}, fmt.Errorf("load clients: %w", err)
	}

	stats := ComputeStats(receivables, clientList, time.Now())

	if s.redis != nil {
		data, err := json.Marshal(cachedStats{Version: version, Stats: stats})
		if err == nil {
			if err := s.redis.Set(ctx, cacheKey, string(data), statsCacheTTL); err != nil {
				log.Printf("[STATS] cache write error: %v", err)
			}
		}
	}

	return stats, nil
}

// BumpVersion invalidates cached snapshots that include ownerID's data.
func (s *DashboardService) BumpVersion(ctx context.Context, ownerID string) {
	if s.redis == nil {
		return
	}
	if _, err := s.redis.Incr(ctx, "stats_version:"+ownerID); err != nil {
		log.Printf("[STATS] version bump error: %v", err)
	}
}

// currentVersion sums the per-owner counters; any bump anywhere in the owner
// set changes the sum.
func (s *DashboardService) currentVersion(ctx context.Context, ownerIDs []string) int64 {
	if s.redis == nil {
		return 0
	}

	var total int64
	for _, id := range ownerIDs {
		raw, err := s.redis.Get(ctx, "stats_version:"+id)
		if err != nil {
			continue
		}
		var v int64
		if _, err := fmt.Sscan(raw, &v); err == nil {
			total += v
		}
	}
	return total
}
