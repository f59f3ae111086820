package history

// replyPreviewLen bounds the quoted text carried on a reply reference.
const replyPreviewLen = 100

// ReplyRef points at the message a record replies to. Username and
// Text are resolved from the archive when the referenced message is
// present.
//
//nolint:tagliatelle // archive document uses snake_case
type ReplyRef struct {
	MessageID int64  `json:"message_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
}

// Record is one archived chat message.
//
//nolint:tagliatelle // archive document uses snake_case
type Record struct {
	MessageID int64     `json:"message_id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp string    `json:"timestamp"`
	Text      string    `json:"text"`
	ReplyTo   *ReplyRef `json:"reply_to"`
}

// truncateRunes bounds s to max runes with no suffix.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
