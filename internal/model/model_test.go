package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "products", Product{}.TableName())
	assert.Equal(t, "conversations", Conversation{}.TableName())
	assert.Equal(t, "messages", Message{}.TableName())
	assert.Equal(t, "orders", Order{}.TableName())
}

func TestConversationStatusTransitions(t *testing.T) {
	tests := []struct {
		from ConversationStatus
		to   ConversationStatus
		want bool
	}{
		{ConversationStatusActive, ConversationStatusBuyerApproved, true},
		{ConversationStatusActive, ConversationStatusSellerApproved, true},
		{ConversationStatusActive, ConversationStatusCancelled, true},
		{ConversationStatusActive, ConversationStatusCompleted, false},
		{ConversationStatusBuyerApproved, ConversationStatusCompleted, true},
		{ConversationStatusBuyerApproved, ConversationStatusCancelled, true},
		{ConversationStatusBuyerApproved, ConversationStatusSellerApproved, false},
		{ConversationStatusSellerApproved, ConversationStatusCompleted, true},
		{ConversationStatusSellerApproved, ConversationStatusCancelled, true},
		{ConversationStatusSellerApproved, ConversationStatusBuyerApproved, false},
		{ConversationStatusCompleted, ConversationStatusCancelled, false},
		{ConversationStatusCancelled, ConversationStatusActive, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestConversationStatusTerminal(t *testing.T) {
	assert.True(t, ConversationStatusCompleted.IsTerminal())
	assert.True(t, ConversationStatusCancelled.IsTerminal())
	assert.False(t, ConversationStatusActive.IsTerminal())
	assert.False(t, ConversationStatusBuyerApproved.IsTerminal())
	assert.False(t, ConversationStatusSellerApproved.IsTerminal())
	assert.False(t, ConversationStatus("PENDING").Valid())
}

func TestConversationParticipants(t *testing.T) {
	cv := Conversation{BuyerID: 1, SellerID: 2}

	assert.Equal(t, uint64(2), cv.OtherParticipant(1))
	assert.Equal(t, uint64(1), cv.OtherParticipant(2))
	assert.Equal(t, uint64(0), cv.OtherParticipant(3))
}

func TestMessageSender(t *testing.T) {
	now := time.Now()

	text := NewTextMessage(10, 7, "hello", now)
	assert.Equal(t, MessageTypeText, text.MessageType)
	assert.False(t, text.Sender().IsSystem())
	id, ok := text.Sender().UserID()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)

	sys := NewSystemMessage(10, "started", now)
	assert.Equal(t, MessageTypeSystem, sys.MessageType)
	assert.Nil(t, sys.SenderID)
	assert.True(t, sys.Sender().IsSystem())
	_, ok = sys.Sender().UserID()
	assert.False(t, ok)
}

func TestParseMessageType(t *testing.T) {
	typ, ok := ParseMessageType("TEXT")
	assert.True(t, ok)
	assert.Equal(t, MessageTypeText, typ)

	typ, ok = ParseMessageType("SYSTEM_MESSAGE")
	assert.True(t, ok)
	assert.Equal(t, MessageTypeSystem, typ)

	_, ok = ParseMessageType("image")
	assert.False(t, ok)
}

func TestProductPurchasable(t *testing.T) {
	assert.True(t, (&Product{ProductAvailable: true, StockQuantity: 1}).Purchasable())
	assert.False(t, (&Product{ProductAvailable: true, StockQuantity: 0}).Purchasable())
	assert.False(t, (&Product{ProductAvailable: false, StockQuantity: 3}).Purchasable())
}
