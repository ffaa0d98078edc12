package services_test

import (
	"testing"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProcessor(db *gorm.DB, policy config.CounterPolicy) *services.ActionProcessor {
	return services.NewActionProcessor(db, policy, events.Noop{})
}

func strptr(s string) *string { return &s }

func pendingCount(t *testing.T, db *gorm.DB, sessionID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Flashcard{}).Where("session_id = ?", sessionID).Count(&count).Error)
	return count
}

func TestProcessActions_AcceptGraduates(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 5)
	p := newProcessor(db, config.CounterOverwrite)

	result, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[1].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[2].PublicID, Action: services.ActionAccept},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cards[0].PublicID, cards[1].PublicID, cards[2].PublicID}, result.Accepted)
	assert.Empty(t, result.Edited)
	assert.Empty(t, result.Rejected)
	assert.Len(t, result.Items, 3)

	// graduated rows lose their session ref but stay alive
	var graduated models.Flashcard
	require.NoError(t, db.Where("public_id = ?", cards[0].PublicID).Take(&graduated).Error)
	assert.Nil(t, graduated.SessionID)
	assert.False(t, graduated.Pending())

	assert.EqualValues(t, 2, pendingCount(t, db, session.ID))
}

func TestProcessActions_EditOverwritesAndGraduates(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 2)
	p := newProcessor(db, config.CounterOverwrite)

	result, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionEdit, EditedFront: strptr("new front"), EditedBack: strptr("new back")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{cards[0].PublicID}, result.Edited)

	var edited models.Flashcard
	require.NoError(t, db.Where("public_id = ?", cards[0].PublicID).Take(&edited).Error)
	assert.Nil(t, edited.SessionID)
	assert.Equal(t, "new front", edited.Front)
	assert.Equal(t, "new back", edited.Back)
}

func TestProcessActions_RejectSoftDeletes(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 2)
	p := newProcessor(db, config.CounterOverwrite)

	result, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionReject},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{cards[0].PublicID}, result.Rejected)

	// gone from default queries
	var visible int64
	require.NoError(t, db.Model(&models.Flashcard{}).Where("public_id = ?", cards[0].PublicID).Count(&visible).Error)
	assert.Zero(t, visible)

	// still present for audit
	var rejected models.Flashcard
	require.NoError(t, db.Unscoped().Where("public_id = ?", cards[0].PublicID).Take(&rejected).Error)
	assert.True(t, rejected.DeletedAt.Valid)
}

func TestProcessActions_EditMissingFieldsFailsWholeBatch(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 3)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[1].PublicID, Action: services.ActionEdit, EditedFront: strptr("only front")},
	})
	require.ErrorIs(t, err, services.ErrValidation)

	// nothing mutated, the accept in the same batch included
	assert.EqualValues(t, 3, pendingCount(t, db, session.ID))
}

func TestProcessActions_UnknownActionFails(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 1)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: "archive"},
	})
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestProcessActions_MissingCandidatesNamed(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 2)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: "no-such-candidate", Action: services.ActionAccept},
	})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), "no-such-candidate")
	assert.NotContains(t, err.Error(), cards[0].PublicID)

	// the partial match was not silently processed
	assert.EqualValues(t, 2, pendingCount(t, db, session.ID))
}

func TestProcessActions_ForeignSessionCandidateIsMissing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	sessionA := seedSession(t, db, user.ID)
	sessionB := seedSession(t, db, user.ID)
	cardsB := seedCandidates(t, db, user.ID, sessionB, 1)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, sessionA.PublicID, []services.ActionItem{
		{CandidateID: cardsB[0].PublicID, Action: services.ActionAccept},
	})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), cardsB[0].PublicID)
	assert.EqualValues(t, 1, pendingCount(t, db, sessionB.ID))
}

func TestProcessActions_SessionOwnedByOtherUser(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db)
	other := seedUser(t, db)
	session := seedSession(t, db, owner.ID)
	cards := seedCandidates(t, db, owner.ID, session, 1)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(other.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
	})
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestProcessActions_BatchBounds(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, nil)
	require.ErrorIs(t, err, services.ErrValidation)

	oversized := make([]services.ActionItem, services.MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = services.ActionItem{CandidateID: string(rune('a' + i%26)), Action: services.ActionAccept}
	}
	// avoid tripping the duplicate check before the size check
	for i := range oversized {
		oversized[i].CandidateID = oversized[i].CandidateID + "-" + string(rune('0'+i/26))
	}
	_, err = p.ProcessActions(user.ID, session.PublicID, oversized)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestProcessActions_DuplicateCandidateRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 1)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[0].PublicID, Action: services.ActionReject},
	})
	require.ErrorIs(t, err, services.ErrValidation)
}

func sessionCounters(t *testing.T, db *gorm.DB, id uint) (int, int) {
	t.Helper()
	var s models.GenerationSession
	require.NoError(t, db.Where("id = ?", id).Take(&s).Error)
	return s.AcceptedUneditedCount, s.AcceptedEditedCount
}

func TestProcessActions_CounterPolicyOverwrite(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 4)
	p := newProcessor(db, config.CounterOverwrite)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[1].PublicID, Action: services.ActionEdit, EditedFront: strptr("f"), EditedBack: strptr("b")},
	})
	require.NoError(t, err)

	unedited, edited := sessionCounters(t, db, session.ID)
	assert.Equal(t, 1, unedited)
	assert.Equal(t, 1, edited)

	// the second batch's counts replace the first's
	_, err = p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[2].PublicID, Action: services.ActionAccept},
	})
	require.NoError(t, err)

	unedited, edited = sessionCounters(t, db, session.ID)
	assert.Equal(t, 1, unedited)
	assert.Equal(t, 0, edited)
}

func TestProcessActions_CounterPolicyAccumulate(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	session := seedSession(t, db, user.ID)
	cards := seedCandidates(t, db, user.ID, session, 4)
	p := newProcessor(db, config.CounterAccumulate)

	_, err := p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[0].PublicID, Action: services.ActionAccept},
		{CandidateID: cards[1].PublicID, Action: services.ActionEdit, EditedFront: strptr("f"), EditedBack: strptr("b")},
	})
	require.NoError(t, err)

	_, err = p.ProcessActions(user.ID, session.PublicID, []services.ActionItem{
		{CandidateID: cards[2].PublicID, Action: services.ActionAccept},
	})
	require.NoError(t, err)

	unedited, edited := sessionCounters(t, db, session.ID)
	assert.Equal(t, 2, unedited)
	assert.Equal(t, 1, edited)
}
