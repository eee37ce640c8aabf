package repository

import (
	"context"
	"fmt"
	"spotnsort/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)
	repo := NewSessionRepository(store)

	user, err := repo.GetCurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, repo.SetCurrentUser(ctx, "sid-1", &models.User{Role: models.RoleUser, Email: "a@b.co", Name: "A"}))
	require.NoError(t, repo.SetCurrentUser(ctx, "sid-1", &models.User{Role: models.RoleUser, Email: "c@d.co", Name: "C"}))

	user, err = repo.GetCurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "c@d.co", user.Email)

	other, err := repo.GetCurrentUser(ctx, "sid-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.Logout(ctx, "sid-1"))
	user, err = repo.GetCurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestDraftRepository(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)
	repo := NewDraftRepository(store)

	drafts, err := repo.GetDrafts(ctx, "officer@city.gov")
	require.NoError(t, err)
	assert.Empty(t, drafts)

	require.NoError(t, repo.SaveDraft(ctx, "officer@city.gov", "r1", models.Draft{Comment: "crew assigned", ScheduleDate: "2026-10-20"}))
	require.NoError(t, repo.SaveDraft(ctx, "Officer@City.gov", "r2", models.Draft{EstimatedDays: "3"}))

	drafts, err = repo.GetDrafts(ctx, "officer@city.gov")
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
	assert.Equal(t, "crew assigned", drafts["r1"].Comment)

	require.NoError(t, repo.ClearDraft(ctx, "officer@city.gov", "r1"))
	drafts, err = repo.GetDrafts(ctx, "officer@city.gov")
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
	_, ok := drafts["r1"]
	assert.False(t, ok)

	// Other authorities keep their own mapping.
	mine, err := repo.GetDrafts(ctx, "someone@else.gov")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestAccountRepositoryFindUser(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestFileStore(t)
	repo := NewAccountRepository(store)

	require.NoError(t, repo.AddUser(ctx, models.User{Role: models.RoleUser, Email: "Asha@Mail.com"}))
	require.NoError(t, repo.AddUser(ctx, models.User{Role: models.RoleAuthority, Email: "asha@mail.com"}))

	u, err := repo.FindUser(ctx, "asha@mail.com", models.RoleUser)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleUser, u.Role)

	u, err = repo.FindUser(ctx, "nobody@mail.com", models.RoleUser)
	require.NoError(t, err)
	assert.Nil(t, u)
}

// slowStore delays reads so concurrent read-modify-write cycles overlap
type slowStore struct {
	KVStore
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(s.delay)
	return s.KVStore.Get(ctx, key)
}

func TestDraftRepositoryConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	inner, _ := newTestFileStore(t)
	repo := NewDraftRepository(&slowStore{KVStore: inner, delay: 2 * time.Millisecond})

	require.NoError(t, repo.SaveDraft(ctx, "officer@city.gov", "keep", models.Draft{Comment: "keep me"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.SaveDraft(ctx, "officer@city.gov", fmt.Sprintf("r%d", i), models.Draft{Comment: fmt.Sprintf("note %d", i)}))
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, repo.ClearDraft(ctx, "officer@city.gov", "keep"))
	}()
	wg.Wait()

	drafts, err := repo.GetDrafts(ctx, "officer@city.gov")
	require.NoError(t, err)
	assert.Len(t, drafts, 20)
	for i := 0; i < 20; i++ {
		assert.Equal(t, fmt.Sprintf("note %d", i), drafts[fmt.Sprintf("r%d", i)].Comment)
	}
	assert.NotContains(t, drafts, "keep")
}
