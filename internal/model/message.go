package model

import "time"

type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeSystem MessageType = "SYSTEM_MESSAGE"
)

func ParseMessageType(s string) (MessageType, bool) {
	switch MessageType(s) {
	case MessageTypeText:
		return MessageTypeText, true
	case MessageTypeSystem:
		return MessageTypeSystem, true
	}
	return "", false
}

// Sender identifies who produced a message: a participant or the system.
type Sender struct {
	userID uint64
}

func SystemSender() Sender {
	return Sender{}
}

func UserSender(userID uint64) Sender {
	return Sender{userID: userID}
}

func (s Sender) IsSystem() bool {
	return s.userID == 0
}

// UserID returns the sending user and false for system messages.
func (s Sender) UserID() (uint64, bool) {
	return s.userID, s.userID != 0
}

type Message struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement"`
	ConversationID uint64      `gorm:"column:conversation_id;not null;index:idx_messages_conversation_sent,priority:1"`
	SenderID       *uint64     `gorm:"column:sender_id;index"`
	Content        string      `gorm:"type:text;not null"`
	MessageType    MessageType `gorm:"column:message_type;size:32;not null"`
	SentAt         time.Time   `gorm:"column:sent_at;not null;index:idx_messages_conversation_sent,priority:2"`
	IsRead         bool        `gorm:"column:is_read;not null"`
}

func (Message) TableName() string {
	return "messages"
}

func NewTextMessage(conversationID, senderID uint64, content string, sentAt time.Time) *Message {
	return &Message{
		ConversationID: conversationID,
		SenderID:       &senderID,
		Content:        content,
		MessageType:    MessageTypeText,
		SentAt:         sentAt,
	}
}

func NewSystemMessage(conversationID uint64, content string, sentAt time.Time) *Message {
	return &Message{
		ConversationID: conversationID,
		Content:        content,
		MessageType:    MessageTypeSystem,
		SentAt:         sentAt,
	}
}

func (m *Message) Sender() Sender {
	if m.SenderID == nil {
		return SystemSender()
	}
	return UserSender(*m.SenderID)
}
