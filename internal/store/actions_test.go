package store

import (
	"context"
	"testing"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedStore(t *testing.T, p domain.Predicate, repo *fakeRepo) (*Store, *recorder) {
	t.Helper()
	s, rec := newTestStore(p, repo)
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	rec.take()
	return s, rec
}

func markRead(_ int, n *domain.Notification) {
	n.MarkRead(t0)
}

func markArchived(_ int, n *domain.Notification) {
	n.Archive(t0)
}

func TestMarkAsRead(t *testing.T) {
	tests := []struct {
		name       string
		predicate  domain.Predicate
		wantEvents []string
		wantLen    int
	}{
		{
			name:       "all view keeps the notification",
			predicate:  domain.NewPredicate(),
			wantEvents: []string{"changed [5]", "unread 9", "unseen 9"},
			wantLen:    10,
		},
		{
			name:       "unread view removes the notification",
			predicate:  domain.NewPredicate(domain.WithRead(false)),
			wantEvents: []string{"deleted [5]", "total 9", "unread 9", "unseen 9"},
			wantLen:    9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(seed(10)...)
			s, rec := loadedStore(t, tt.predicate, repo)

			got, err := s.MarkAsRead(context.Background(), s.At(5))
			require.NoError(t, err)

			assert.Equal(t, "n5", got.ID)
			require.NotNil(t, got.ReadAt)
			assert.Equal(t, t0, *got.ReadAt)
			assert.True(t, got.IsSeen())
			assert.Equal(t, tt.wantEvents, rec.take())
			assert.Equal(t, tt.wantLen, s.Len())
			assert.Equal(t, []string{"read:n5"}, repo.actions)
			assert.Equal(t, 1, repo.calls(), "no network fetch for a local action")
		})
	}
}

func TestMarkAsReadAlreadyReadChangesNoCounters(t *testing.T) {
	repo := newFakeRepo(seed(3, markRead)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)

	_, err := s.MarkAsRead(context.Background(), s.At(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"changed [0]"}, rec.take())
}

func TestMarkAsUnread(t *testing.T) {
	tests := []struct {
		name       string
		predicate  domain.Predicate
		wantEvents []string
	}{
		{
			name:       "all view",
			predicate:  domain.NewPredicate(),
			wantEvents: []string{"changed [0]", "unread 1"},
		},
		{
			name:       "read view removes the notification",
			predicate:  domain.NewPredicate(domain.WithRead(true)),
			wantEvents: []string{"deleted [0]", "total 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(seed(4, markRead)...)
			s, rec := loadedStore(t, tt.predicate, repo)

			got, err := s.MarkAsUnread(context.Background(), s.At(0))
			require.NoError(t, err)
			assert.False(t, got.IsRead())
			assert.Equal(t, tt.wantEvents, rec.take())
		})
	}
}

func TestArchiveRemovesFromDefaultView(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)

	got, err := s.Archive(context.Background(), s.At(1))
	require.NoError(t, err)

	assert.True(t, got.IsArchived())
	assert.Equal(t, []string{"deleted [1]", "total 2", "unread 2", "unseen 2"}, rec.take())
	assert.Equal(t, []string{"n0", "n2"}, ids(s.Notifications()))
}

func TestArchiveInArchivedViewKeepsTotal(t *testing.T) {
	repo := newFakeRepo(seed(2, markArchived)...)
	s, rec := loadedStore(t, domain.NewPredicate(domain.WithArchived(true)), repo)

	// archiving twice is a no-op
	_, err := s.Archive(context.Background(), s.At(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"changed [0]"}, rec.take())
	assert.Equal(t, 2, s.TotalCount())
}

func TestUnarchiveLeavesArchivedView(t *testing.T) {
	repo := newFakeRepo(seed(3, markArchived)...)
	s, rec := loadedStore(t, domain.NewPredicate(domain.WithArchived(true)), repo)

	got, err := s.Unarchive(context.Background(), s.At(0))
	require.NoError(t, err)

	assert.False(t, got.IsArchived())
	assert.Equal(t, []string{"deleted [0]", "total 2"}, rec.take())
	assert.Equal(t, []string{"unarchive:n0"}, repo.actions)
}

func TestActionRemoteFailureLeavesStateUntouched(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)
	repo.actionErr = errBoom

	target := s.At(0)
	_, err := s.MarkAsRead(context.Background(), target)
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, domain.ErrNotificationNotFound)

	assert.False(t, target.IsRead())
	assert.Equal(t, 3, s.UnreadCount())
	assert.Empty(t, rec.take())
}

func TestActionOnNotificationThatLeftTheStore(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, _ := loadedStore(t, domain.NewPredicate(), repo)
	gone := s.At(2)

	repo.setServer(seed(2)...)
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)

	_, err = s.MarkAsRead(context.Background(), gone)
	require.ErrorIs(t, err, domain.ErrNotificationNotFound)
	assert.Contains(t, repo.actions, "read:n2", "remote action still ran")
}

func TestActionRejectsNilNotification(t *testing.T) {
	s, _ := newTestStore(domain.NewPredicate(), newFakeRepo())

	_, err := s.Archive(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidNotificationID)
	err = s.Delete(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidNotificationID)
}

func TestDeleteThenFetchContinuesWithPreviousToken(t *testing.T) {
	repo := newFakeRepo(seed(30)...)
	s, rec := newTestStore(domain.NewPredicate(), repo)
	ctx := context.Background()
	_, err := s.Fetch(ctx)
	require.NoError(t, err)
	rec.take()

	require.NoError(t, s.Delete(ctx, s.At(3)))
	assert.Equal(t, []string{"deleted [3]", "total 29", "unread 29", "unseen 29"}, rec.take())
	assert.False(t, s.Contains("n3"))

	_, err = s.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PageToken{"", "2"}, repo.tokens)
	assert.Equal(t, 28, s.Len())

	seen := map[string]bool{}
	for _, n := range s.Notifications() {
		require.False(t, seen[n.ID], "duplicate %s", n.ID)
		seen[n.ID] = true
	}
}

func TestDeleteFailureLeavesStateUntouched(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)
	repo.deleteErr = errBoom

	err := s.Delete(context.Background(), s.At(0))
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, s.Len())
	assert.Empty(t, rec.take())
}

func TestDeleteReadNotificationKeepsUnreadCount(t *testing.T) {
	repo := newFakeRepo(seed(3, func(i int, n *domain.Notification) {
		if i == 0 {
			n.MarkRead(t0)
		}
	})...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)

	require.NoError(t, s.Delete(context.Background(), s.At(0)))
	assert.Equal(t, []string{"deleted [0]", "total 2"}, rec.take())
	assert.Equal(t, 2, s.UnreadCount())
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)

	require.NoError(t, s.MarkAllAsRead(context.Background()))

	assert.Equal(t, []string{"changed [0 1 2]", "unread 0", "unseen 0"}, rec.take())
	assert.Equal(t, 3, s.Len())
	for _, n := range s.Notifications() {
		assert.True(t, n.IsRead(), n.ID)
	}
	assert.Equal(t, []string{"read_all:"}, repo.actions)
}

func TestMarkAllAsSeen(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)

	require.NoError(t, s.MarkAllAsSeen(context.Background()))

	assert.Equal(t, []string{"changed [0 1 2]", "unseen 0"}, rec.take())
	assert.Equal(t, 3, s.UnreadCount())
	for _, n := range s.Notifications() {
		assert.True(t, n.IsSeen(), n.ID)
		assert.False(t, n.IsRead(), n.ID)
	}
}

func TestMarkAllFailure(t *testing.T) {
	repo := newFakeRepo(seed(3)...)
	s, rec := loadedStore(t, domain.NewPredicate(), repo)
	repo.actionErr = errBoom

	require.ErrorIs(t, s.MarkAllAsSeen(context.Background()), errBoom)
	assert.Equal(t, 3, s.UnseenCount())
	assert.Empty(t, rec.take())
}
