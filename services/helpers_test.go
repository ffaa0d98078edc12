package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Auth0ID: "auth0|" + uuid.NewString(), Nickname: "tester"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSession(t *testing.T, db *gorm.DB, userID uint) models.GenerationSession {
	t.Helper()
	session := models.GenerationSession{
		PublicID:      uuid.NewString(),
		UserID:        userID,
		InputText:     "some source text",
		InputTextHash: "abc",
		InputModel:    "m1",
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

// seedCandidates creates n pending candidates with staggered creation times
// so ordering assertions are deterministic.
func seedCandidates(t *testing.T, db *gorm.DB, userID uint, session models.GenerationSession, n int) []models.Flashcard {
	t.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	cards := make([]models.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		sessionID := session.ID
		card := models.Flashcard{
			PublicID:  uuid.NewString(),
			Front:     fmt.Sprintf("front %d", i),
			Back:      fmt.Sprintf("back %d", i),
			UserID:    userID,
			SessionID: &sessionID,
		}
		card.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&card).Error)
		cards = append(cards, card)
	}
	return cards
}
