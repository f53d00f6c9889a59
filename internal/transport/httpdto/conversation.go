package httpdto

// CreateConversationRequest is used for POST /conversations
type CreateConversationRequest struct {
	Type           string   `json:"type" binding:"required"` // DIRECT or GROUP
	Name           string   `json:"name,omitempty"`
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}

// AddMemberRequest is used for POST /conversations/:id/members
type AddMemberRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// ParticipantDTO describes a member of a conversation
type ParticipantDTO struct {
	AccountID string `json:"account_id"`
	JoinedAt  string `json:"joined_at"`
	LeftAt    string `json:"left_at,omitempty"`
}

// ConversationDTO is the API shape of a conversation
type ConversationDTO struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	Name           string           `json:"name,omitempty"`
	CreatedBy      string           `json:"created_by"`
	LastMessageID  string           `json:"last_message_id,omitempty"`
	LastActivityAt string           `json:"last_activity_at"`
	UnreadCount    int64            `json:"unread_count"`
	Participants   []ParticipantDTO `json:"participants,omitempty"`
	CreatedAt      string           `json:"created_at"`
}
