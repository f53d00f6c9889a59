package httpdto

// PresignUploadRequest is used for POST /uploads/presign
type PresignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	SizeBytes   int64  `json:"size_bytes" binding:"required"`
}

// PresignUploadResponse carries everything the client needs to PUT the file
// directly to object storage and then reference it in a message.
type PresignUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ObjectKey string            `json:"object_key"`
	FileURL   string            `json:"file_url,omitempty"`
	ExpiresIn int64             `json:"expires_in"`
}
