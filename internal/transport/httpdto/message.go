package httpdto

// SendMessageRequest is used for POST /conversations/:id/messages
type SendMessageRequest struct {
	Kind      string `json:"kind,omitempty"` // defaults to TEXT
	Content   string `json:"content,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// EditMessageRequest is used for PATCH /messages/:id
type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MarkReadRequest is used for POST /conversations/:id/read
type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids" binding:"required"`
}

// MarkReadResponse reports which messages were newly marked
type MarkReadResponse struct {
	MarkedIDs []string `json:"marked_ids"`
}

// ReceiptDTO is a single read receipt on a message
type ReceiptDTO struct {
	AccountID string `json:"account_id"`
	ReadAt    string `json:"read_at"`
}

// MessageDTO is the API shape of a message. Deleted messages carry the
// placeholder content with file fields cleared.
type MessageDTO struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	Kind           string       `json:"kind"`
	Content        string       `json:"content"`
	FileURL        string       `json:"file_url,omitempty"`
	FileName       string       `json:"file_name,omitempty"`
	FileSize       int64        `json:"file_size,omitempty"`
	ReplyToID      string       `json:"reply_to_id,omitempty"`
	IsEdited       bool         `json:"is_edited"`
	EditedAt       string       `json:"edited_at,omitempty"`
	IsDeleted      bool         `json:"is_deleted"`
	Receipts       []ReceiptDTO `json:"receipts,omitempty"`
	CreatedAt      string       `json:"created_at"`
}

// ListMessagesRequest captures the query params of GET /conversations/:id/messages
type ListMessagesRequest struct {
	Before string `form:"before"` // RFC3339 cursor, defaults to now
	Limit  int    `form:"limit"`
}
