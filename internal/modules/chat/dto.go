package chat

type SendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
	ClientID    string `json:"client_id"`
}

type MarkReadRequest struct {
	MessageIDs []int64 `json:"message_ids" binding:"required,min=1"`
}
