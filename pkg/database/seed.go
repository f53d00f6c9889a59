package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/domain/conversation"
	"beacon-chat/internal/domain/message"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	AdminEmail      string
	AdminPassword   string
	AdminUsername   string
	CreateTestUsers bool
	TestUserCount   int
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminEmail:      "admin@beacon.chat",
		AdminPassword:   "Admin@123!",
		AdminUsername:   "admin",
		CreateTestUsers: true,
		TestUserCount:   5,
	}
}

// Seed creates the initial admin account and, optionally, a handful of test
// users with one direct conversation between the first two.
func Seed(cfg *SeedConfig) error {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	log.Println("Starting database seeding...")

	admin, err := seedAccount(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, account.KindAdmin, account.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("Admin account ready: %s", admin.Email)

	if !cfg.CreateTestUsers {
		return nil
	}

	users := make([]*account.Account, 0, cfg.TestUserCount)
	for i := 1; i <= cfg.TestUserCount; i++ {
		username := fmt.Sprintf("testuser%d", i)
		u, err := seedAccount(username, username+"@beacon.chat", "Test@123!", account.KindUser, account.RoleMember)
		if err != nil {
			return fmt.Errorf("seed %s: %w", username, err)
		}
		users = append(users, u)
	}

	if len(users) >= 2 {
		if err := seedDirectConversation(users[0], users[1]); err != nil {
			return fmt.Errorf("seed conversation: %w", err)
		}
	}

	log.Println("Database seeding complete")
	return nil
}

func seedAccount(username, email, password, kind, role string) (*account.Account, error) {
	email = strings.ToLower(email)

	var existing account.Account
	if err := DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &account.Account{
		ID:           uuid.New(),
		Kind:         kind,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := DB.Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func seedDirectConversation(a, b *account.Account) error {
	now := time.Now()
	conv := &conversation.Conversation{
		ID:             uuid.New(),
		Type:           conversation.TypeDirect,
		CreatedBy:      a.ID,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
		Participants: []conversation.Participant{
			{AccountID: a.ID, JoinedAt: now},
			{AccountID: b.ID, JoinedAt: now},
		},
	}
	if err := DB.Create(conv).Error; err != nil {
		return err
	}

	msg := &message.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       a.ID,
		Kind:           message.KindText,
		Content:        "Welcome to Beacon Chat!",
		CreatedAt:      now,
	}
	if err := DB.Create(msg).Error; err != nil {
		return err
	}

	return DB.Model(&conversation.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(map[string]interface{}{
			"last_message_id":  msg.ID,
			"last_activity_at": now,
		}).Error
}
