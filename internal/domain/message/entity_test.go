package message

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

func TestMaskedHidesContentAndFiles(t *testing.T) {
	m := Message{
		ID:        uuid.New(),
		Kind:      KindImage,
		Content:   "secret caption",
		FileURL:   sql.NullString{String: "https://cdn.example.com/x.png", Valid: true},
		FileName:  sql.NullString{String: "x.png", Valid: true},
		FileSize:  sql.NullInt64{Int64: 42, Valid: true},
		IsDeleted: true,
	}

	masked := m.Masked()
	assert.Equal(t, DeletedPlaceholder, masked.Content)
	assert.False(t, masked.FileURL.Valid)
	assert.False(t, masked.FileName.Valid)
	assert.False(t, masked.FileSize.Valid)

	// Masking a live message is the identity.
	live := Message{Content: "hello", Kind: KindText}
	assert.Equal(t, live, live.Masked())
}

func TestReadBy(t *testing.T) {
	reader := uuid.New()
	m := Message{
		Receipts: []Receipt{{AccountID: reader, ReadAt: time.Now()}},
	}
	assert.True(t, m.ReadBy(reader))
	assert.False(t, m.ReadBy(uuid.New()))
}

// The receipt table's composite primary key is what makes MarkRead's
// ON CONFLICT DO NOTHING an actual no-op on re-marks.
func TestReceiptSchemaHasCompositePrimaryKey(t *testing.T) {
	s, err := schema.Parse(&Receipt{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"message_id", "account_id"}, s.PrimaryFieldDBNames)
}

func TestMessageSchemaKeysAndIndexes(t *testing.T) {
	s, err := schema.Parse(&Message{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, s.PrimaryFieldDBNames)

	indexes := s.ParseIndexes()
	require.Contains(t, indexes, "idx_messages_conversation")
	require.Contains(t, indexes, "idx_messages_created")
}
