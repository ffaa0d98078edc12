package services_test

import (
	"testing"
	"time"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/services"
	"github.com/flashgen/flashgen-api/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQueryService(db *gorm.DB) *services.QueryService {
	return services.NewQueryService(store.NewCandidateStore(db), store.NewSessionStore(db), events.Noop{})
}

func publicIDs(cards []models.Flashcard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.PublicID)
	}
	return ids
}

func TestSessionCandidates_ReturnsExactlyStoredRows(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 4)
	q := newQueryService(db)

	got, err := q.SessionCandidates(user.ID, session.PublicID)
	require.NoError(t, err)
	assert.Equal(t, publicIDs(cards), publicIDs(got))
}

func TestSessionCandidates_UnknownSessionIsEmptyNotError(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	q := newQueryService(db)

	got, err := q.SessionCandidates(user.ID, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSessionCandidates_ForeignSessionIsEmpty(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	other := seedUser(t, db)
	session := seedSession(t, db, owner.ID)
	seedCandidates(t, db, owner.ID, session, 2)
	q := newQueryService(db)

	got, err := q.SessionCandidates(other.ID, session.PublicID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAllPending_OrderedOldestFirstAndScoped(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	stranger := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 3)

	strangerSession := seedSession(t, db, stranger.ID)
	seedCandidates(t, db, stranger.ID, strangerSession, 2)

	q := newQueryService(db)
	got, err := q.AllPending(user.ID)
	require.NoError(t, err)
	assert.Equal(t, publicIDs(cards), publicIDs(got))
}

func TestAllPending_ExcludesGraduatedAndRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 3)

	// graduate one, reject one
	require.NoError(t, db.Model(&models.Flashcard{}).Where("id = ?", cards[0].ID).Update("session_id", nil).Error)
	require.NoError(t, db.Delete(&models.Flashcard{}, cards[1].ID).Error)

	q := newQueryService(db)
	got, err := q.AllPending(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{cards[2].PublicID}, publicIDs(got))
}

func TestOtherPending_ExcludesOneSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	sessionA := seedSession(t, db, user.ID)
	sessionB := seedSession(t, db, user.ID)
	cardsA := seedCandidates(t, db, user.ID, sessionA, 2)
	cardsB := seedCandidates(t, db, user.ID, sessionB, 2)
	q := newQueryService(db)

	got, err := q.OtherPending(user.ID, sessionA.PublicID)
	require.NoError(t, err)
	assert.ElementsMatch(t, publicIDs(cardsB), publicIDs(got))

	got, err = q.OtherPending(user.ID, sessionB.PublicID)
	require.NoError(t, err)
	assert.ElementsMatch(t, publicIDs(cardsA), publicIDs(got))
}

func TestOtherPending_UnknownExcludeDegradesToAll(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 2)
	q := newQueryService(db)

	got, err := q.OtherPending(user.ID, uuid.NewString())
	require.NoError(t, err)
	assert.ElementsMatch(t, publicIDs(cards), publicIDs(got))
}

func TestOrphaned_RespectsRetentionWindow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	q := newQueryService(db)

	sessionID := session.ID
	old := models.Flashcard{
		PublicID:  uuid.NewString(),
		Front:     "old",
		Back:      "old",
		UserID:    user.ID,
		SessionID: &sessionID,
	}
	old.CreatedAt = time.Now().AddDate(0, 0, -8)
	require.NoError(t, db.Create(&old).Error)

	fresh := seedCandidates(t, db, user.ID, session, 1)

	got, err := q.Orphaned(user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{old.PublicID}, publicIDs(got))

	// window of zero days covers everything still pending
	got, err = q.Orphaned(user.ID, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, append([]string{old.PublicID}, publicIDs(fresh)...), publicIDs(got))
}

func TestOrphaned_ExcludesRejectedEvenAtZeroDays(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 2)

	p := services.NewActionProcessor(db, config.CounterOverwrite, events.Noop{})
	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionReject},
	})
	require.NoError(t, err)

	q := newQueryService(db)
	got, err := q.Orphaned(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{cards[1].PublicID}, publicIDs(got))
}

func TestDeleteOrphaned_SoftDeletesAndCounts(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 3)
	q := newQueryService(db)

	deleted, err := q.DeleteOrphaned(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	got, err := q.AllPending(user.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	// rows survive for audit
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Flashcard{}).Where("public_id IN ?", publicIDs(cards)).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
