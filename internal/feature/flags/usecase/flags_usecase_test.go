package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "kurukshetra_backend/internal/feature/auth/domain"
	authentity "kurukshetra_backend/internal/feature/auth/domain/entity"
	"kurukshetra_backend/internal/feature/flags/domain/entity"
)

// fakeLedger keeps flags per user in memory. AddFlagToUser is atomic.
type fakeLedger struct {
	mu      sync.Mutex
	flags   map[string][]string
	addErr  error
	addHits int
}

func newFakeLedger(users ...string) *fakeLedger {
	l := &fakeLedger{flags: map[string][]string{}}
	for _, u := range users {
		l.flags[u] = []string{}
	}
	return l
}

func (l *fakeLedger) FindUserByID(_ context.Context, id string) (*authentity.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	flags, ok := l.flags[id]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	return &authentity.User{ID: id, FlagsFound: append([]string{}, flags...)}, nil
}

func (l *fakeLedger) AddFlagToUser(_ context.Context, id, slug string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addHits++
	if l.addErr != nil {
		return l.addErr
	}
	for _, f := range l.flags[id] {
		if f == slug {
			return authdomain.ErrFlagAlreadyFound
		}
	}
	l.flags[id] = append(l.flags[id], slug)
	return nil
}

type captureAuditor struct {
	mu     sync.Mutex
	events []string
}

func (c *captureAuditor) Record(_ context.Context, event, _ string, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

type acceptCounter struct {
	mu    sync.Mutex
	slugs []string
}

func (a *acceptCounter) FlagAccepted(slug string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.slugs = append(a.slugs, slug)
}

func testCatalog() *entity.Catalog {
	return entity.NewCatalog(
		entity.Flag{Slug: "alpha", Title: "Alpha", Secret: "KURU{Alpha}"},
		entity.Flag{Slug: "beta", Title: "Beta", Secret: "KURU{beta}"},
	)
}

func TestFlagsUsecase_Submit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		flag    string
		seed    []string
		wantErr error
	}{
		{"accepted", "alpha", "KURU{Alpha}", nil, nil},
		{"surrounding whitespace is trimmed", "alpha", "  KURU{Alpha}\n", nil, nil},
		{"unknown slug", "gamma", "KURU{Alpha}", nil, ErrUnknownSlug},
		{"case sensitive", "alpha", "kuru{alpha}", nil, ErrWrongFlag},
		{"wrong flag", "alpha", "KURU{nope}", nil, ErrWrongFlag},
		{"already found with correct flag", "alpha", "KURU{Alpha}", []string{"alpha"}, ErrAlreadySubmitted},
		{"wrong flag wins over already found", "alpha", "KURU{nope}", []string{"alpha"}, ErrWrongFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger("u1")
			ledger.flags["u1"] = append(ledger.flags["u1"], tt.seed...)
			audit, metrics := &captureAuditor{}, &acceptCounter{}
			uc := NewFlagsUsecase(testCatalog(), ledger, audit, metrics)

			award, err := uc.Submit(ctx, "u1", tt.slug, tt.flag)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, award)
				assert.Equal(t, []string{"flag_rejected"}, audit.events)
				assert.Empty(t, metrics.slugs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &Award{Slug: "alpha", Flag: "KURU{Alpha}", Points: 100}, award)
			assert.Equal(t, []string{"flag_accepted"}, audit.events)
			assert.Equal(t, []string{"alpha"}, metrics.slugs)
		})
	}
}

func TestFlagsUsecase_Submit_StoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		uc := NewFlagsUsecase(testCatalog(), newFakeLedger(), nil, nil)
		_, err := uc.Submit(ctx, "ghost", "alpha", "KURU{Alpha}")
		assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
	})

	t.Run("store reports duplicate", func(t *testing.T) {
		ledger := newFakeLedger("u1")
		ledger.addErr = authdomain.ErrFlagAlreadyFound
		uc := NewFlagsUsecase(testCatalog(), ledger, nil, nil)
		_, err := uc.Submit(ctx, "u1", "alpha", "KURU{Alpha}")
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("primary failure propagates", func(t *testing.T) {
		ledger := newFakeLedger("u1")
		ledger.addErr = errors.New("disk I/O error")
		uc := NewFlagsUsecase(testCatalog(), ledger, nil, nil)
		_, err := uc.Submit(ctx, "u1", "alpha", "KURU{Alpha}")
		assert.ErrorContains(t, err, "disk I/O error")
	})
}

// TestFlagsUsecase_Submit_Concurrent は同じユーザーの同時正解提出で加点が1回だけになることを検証します。
func TestFlagsUsecase_Submit_Concurrent(t *testing.T) {
	ctx := context.Background()
	ledger := newFakeLedger("u1")
	metrics := &acceptCounter{}
	uc := NewFlagsUsecase(testCatalog(), ledger, nil, metrics)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		already  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Submit(ctx, "u1", "beta", "KURU{beta}")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrAlreadySubmitted):
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 19, already)
	assert.Equal(t, []string{"beta"}, ledger.flags["u1"])
	assert.Len(t, metrics.slugs, 1)
}

func TestFlagsUsecase_Progress(t *testing.T) {
	ledger := newFakeLedger("u1")
	ledger.flags["u1"] = []string{"beta"}
	uc := NewFlagsUsecase(testCatalog(), ledger, nil, nil)

	p, err := uc.Progress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.FoundCount)
	assert.Equal(t, 100, p.TotalPoints)
	require.Len(t, p.Challenges, 2)
	assert.Equal(t, ChallengeStatus{Slug: "alpha", Title: "Alpha", Points: 100, Found: false}, p.Challenges[0])
	assert.True(t, p.Challenges[1].Found)

	_, err = uc.Progress(context.Background(), "ghost")
	assert.ErrorIs(t, err, authdomain.ErrUserNotFound)
}

func TestFlagsUsecase_Catalog(t *testing.T) {
	uc := NewFlagsUsecase(nil, newFakeLedger(), nil, nil)
	list := uc.Catalog()
	require.NotEmpty(t, list)
	for _, c := range list {
		assert.Equal(t, entity.PointsPerFlag, c.Points, c.Slug)
		assert.False(t, c.Found)
	}
}
