package conversation

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestHasActiveParticipant(t *testing.T) {
	member := uuid.New()
	gone := uuid.New()
	c := Conversation{
		Participants: []Participant{
			{AccountID: member, JoinedAt: time.Now()},
			{AccountID: gone, JoinedAt: time.Now(), LeftAt: sql.NullTime{Time: time.Now(), Valid: true}},
		},
	}

	assert.True(t, c.HasActiveParticipant(member))
	assert.False(t, c.HasActiveParticipant(gone))
	assert.False(t, c.HasActiveParticipant(uuid.New()))
}

// One membership row per (conversation, account) pair; rejoin updates the
// existing row instead of inserting a second one.
func TestParticipantSchemaHasCompositePrimaryKey(t *testing.T) {
	s, err := schema.Parse(&Participant{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"conversation_id", "account_id"}, s.PrimaryFieldDBNames)
}
