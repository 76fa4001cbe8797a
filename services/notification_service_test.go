package services

import (
	"testing"
	"time"

	"edscrum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyHonoursPreferences(t *testing.T) {
	f := newFixture(t)
	user := f.createStudent(t, "ana")

	require.NoError(t, f.db.Model(user).Update("notification_awards", false).Error)

	f.notifications.Notify(user.ID, models.NotificationAward, "Prémio", "ignorado")
	f.notifications.Notify(user.ID, models.NotificationTeam, "Equipa", "entregue")

	list, err := f.notifications.ListForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationTeam, list[0].Type)
}

func TestNotifyUnknownUserIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.notifications.Notify(9999, models.NotificationSystem, "x", "y")

	list, err := f.notifications.ListForUser(9999)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.createStudent(t, "ana")
	other := f.createStudent(t, "bruno")

	f.notifications.Notify(owner.ID, models.NotificationTeam, "Equipa", "msg")

	list, err := f.notifications.ListForUser(owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Read)

	// Another user cannot mark it.
	assert.ErrorIs(t, f.notifications.MarkRead(other.ID, list[0].ID), ErrNotFound)

	require.NoError(t, f.notifications.MarkRead(owner.ID, list[0].ID))
	list, err = f.notifications.ListForUser(owner.ID)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	user := f.createStudent(t, "ana")

	f.notifications.Notify(user.ID, models.NotificationTeam, "a", "1")
	f.notifications.Notify(user.ID, models.NotificationSprint, "b", "2")

	require.NoError(t, f.notifications.MarkAllRead(user.ID))

	list, err := f.notifications.ListForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.True(t, n.Read)
	}
}

func TestPurgeReadNotifications(t *testing.T) {
	f := newFixture(t)
	user := f.createStudent(t, "ana")

	old := models.Notification{
		UserID:    user.ID,
		Type:      models.NotificationTeam,
		Title:     "antiga",
		Read:      true,
		CreatedAt: time.Now().Add(-60 * 24 * time.Hour),
	}
	recent := models.Notification{
		UserID: user.ID,
		Type:   models.NotificationTeam,
		Title:  "recente",
		Read:   true,
	}
	unreadOld := models.Notification{
		UserID:    user.ID,
		Type:      models.NotificationTeam,
		Title:     "antiga por ler",
		CreatedAt: time.Now().Add(-60 * 24 * time.Hour),
	}
	require.NoError(t, f.db.Create(&old).Error)
	require.NoError(t, f.db.Create(&recent).Error)
	require.NoError(t, f.db.Create(&unreadOld).Error)

	cleanup := NewCleanupService(f.db)
	require.NoError(t, cleanup.PurgeReadNotifications())

	list, err := f.notifications.ListForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	titles := []string{list[0].Title, list[1].Title}
	assert.Contains(t, titles, "recente")
	assert.Contains(t, titles, "antiga por ler")
}
