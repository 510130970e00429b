package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type threadFixture struct {
	env    *testEnv
	buyer  *model.User
	seller *model.User
	cv     *model.Conversation
}

func newThread(t *testing.T) *threadFixture {
	t.Helper()
	env := newTestEnv(t)
	seller := env.user(t, "sam")
	buyer := env.user(t, "bea")
	p := env.product(t, seller, 999, 3)
	cv, _, err := env.convs.Initiate(context.Background(), p.ID, buyer.ID)
	require.NoError(t, err)
	return &threadFixture{env: env, buyer: buyer, seller: seller, cv: cv}
}

func TestSendValidation(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"empty", "", "empty_message"},
		{"whitespace", "   \n\t ", "empty_message"},
		{"too long", strings.Repeat("a", MaxMessageLength+1), "message_too_long"},
		{"only a scheme", "javascript:", "empty_message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, tt.content)
			requireCode(t, err, ErrValidation, tt.code)
		})
	}
	assert.Equal(t, int64(1), f.env.messageCount(t, f.cv.ID))

	msg, err := f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, "  "+strings.Repeat("é", MaxMessageLength)+"  ")
	require.NoError(t, err)
	assert.Equal(t, MaxMessageLength, len([]rune(msg.Content)))
}

func TestSendSanitizesAndStoresTextMessage(t *testing.T) {
	f := newThread(t)
	msg, err := f.env.messages.Send(context.Background(), f.cv.ID, f.seller.ID, ` <script>alert(1)</script> hi `)
	require.NoError(t, err)
	assert.Equal(t, "&lt;script>alert(1)&lt;/script&gt; hi", msg.Content)
	assert.Equal(t, model.MessageTypeText, msg.MessageType)
	assert.False(t, msg.IsRead)
	id, ok := msg.Sender().UserID()
	require.True(t, ok)
	assert.Equal(t, f.seller.ID, id)
}

func TestSendRules(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()
	stranger := f.env.user(t, "eve")

	_, err := f.env.messages.Send(ctx, f.cv.ID, stranger.ID, "hello")
	requireCode(t, err, ErrForbidden, "not_participant")

	_, err = f.env.messages.Send(ctx, 777, f.buyer.ID, "hello")
	requireCode(t, err, ErrNotFound, "conversation_not_found")

	_, err = f.env.convs.Cancel(ctx, f.cv.ID, f.buyer.ID)
	require.NoError(t, err)
	_, err = f.env.messages.Send(ctx, f.cv.ID, f.seller.ID, "wait!")
	requireCode(t, err, ErrPolicyViolation, "conversation_cancelled")
}

func TestSendAllowedAfterCompletion(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()
	_, err := f.env.convs.Approve(ctx, f.cv.ID, f.buyer.ID)
	require.NoError(t, err)
	_, err = f.env.convs.Approve(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)

	_, err = f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, "thanks, see you at the library")
	require.NoError(t, err)
}

func TestListMarksReadIdempotently(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()
	for _, body := range []string{"one", "two"} {
		_, err := f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, body)
		require.NoError(t, err)
	}
	_, err := f.env.messages.Send(ctx, f.cv.ID, f.seller.ID, "reply")
	require.NoError(t, err)

	unread, err := f.env.messages.UnreadCount(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	msgs, err := f.env.messages.List(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].SentAt.Before(msgs[i-1].SentAt))
	}

	unread, err = f.env.messages.UnreadCount(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	_, err = f.env.messages.List(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)
	marked, err := f.env.messages.MarkRead(ctx, f.cv.ID, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	// The buyer's own view is untouched by the seller reading.
	unread, err = f.env.messages.UnreadCount(ctx, f.cv.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
	marked, err = f.env.messages.MarkRead(ctx, f.cv.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
}

func TestListForbiddenForStranger(t *testing.T) {
	f := newThread(t)
	stranger := f.env.user(t, "eve")
	_, err := f.env.messages.List(context.Background(), f.cv.ID, stranger.ID)
	requireCode(t, err, ErrForbidden, "not_participant")
	_, err = f.env.messages.UnreadCount(context.Background(), f.cv.ID, stranger.ID)
	requireCode(t, err, ErrForbidden, "not_participant")
}

func TestSearchMessages(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()
	for _, body := range []string{"Pickup at LIBRARY?", "library works", "100% cash_only", "see you", "Meet at the CAFÉ on ÅRHUS street"} {
		_, err := f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, body)
		require.NoError(t, err)
	}

	found, err := f.env.messages.Search(ctx, f.cv.ID, f.seller.ID, "  Library ")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "library works", found[0].Content)
	assert.Equal(t, "Pickup at LIBRARY?", found[1].Content)

	found, err = f.env.messages.Search(ctx, f.cv.ID, f.seller.ID, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% cash_only", found[0].Content)

	found, err = f.env.messages.Search(ctx, f.cv.ID, f.seller.ID, "a_h")
	require.NoError(t, err)
	assert.Empty(t, found)

	for _, term := range []string{"café", "CAFÉ", "årHUS"} {
		found, err = f.env.messages.Search(ctx, f.cv.ID, f.seller.ID, term)
		require.NoError(t, err)
		require.Len(t, found, 1, term)
		assert.Equal(t, "Meet at the CAFÉ on ÅRHUS street", found[0].Content)
	}

	_, err = f.env.messages.Search(ctx, f.cv.ID, f.seller.ID, "   ")
	requireCode(t, err, ErrValidation, "empty_search_term")

	stranger := f.env.user(t, "eve")
	_, err = f.env.messages.Search(ctx, f.cv.ID, stranger.ID, "library")
	requireCode(t, err, ErrForbidden, "not_participant")
}

func TestUnreadCountsOnlyCoverOwnConversations(t *testing.T) {
	f := newThread(t)
	ctx := context.Background()
	_, err := f.env.messages.Send(ctx, f.cv.ID, f.buyer.ID, "still available?")
	require.NoError(t, err)

	counts, err := f.env.messages.UnreadCounts(ctx, f.seller.ID, []uint64{f.cv.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{f.cv.ID: 1}, counts)

	stranger := f.env.user(t, "eve")
	counts, err = f.env.messages.UnreadCounts(ctx, stranger.ID, []uint64{f.cv.ID})
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLastAndListByType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam")
	buyer := env.user(t, "bea")
	p := env.product(t, seller, 999, 3)
	cv, _, err := env.convs.Initiate(ctx, p.ID, buyer.ID)
	require.NoError(t, err)

	_, err = env.messages.Send(ctx, cv.ID, buyer.ID, "hello")
	require.NoError(t, err)
	_, err = env.convs.Approve(ctx, cv.ID, buyer.ID)
	require.NoError(t, err)
	_, err = env.messages.Send(ctx, cv.ID, seller.ID, "ok")
	require.NoError(t, err)

	last, err := env.messages.Last(ctx, cv.ID, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", last.Content)

	system, err := env.messages.ListByType(ctx, cv.ID, buyer.ID, "SYSTEM_MESSAGE")
	require.NoError(t, err)
	require.Len(t, system, 2)
	assert.True(t, strings.HasPrefix(system[0].Content, "Conversation started"))

	text, err := env.messages.ListByType(ctx, cv.ID, seller.ID, "text")
	require.NoError(t, err)
	require.Len(t, text, 2)
	assert.Equal(t, "hello", text[0].Content)

	_, err = env.messages.ListByType(ctx, cv.ID, seller.ID, "IMAGE")
	requireCode(t, err, ErrValidation, "unknown_message_type")
}

func TestLastOnEmptyThreadReturnsNil(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.user(t, "bea")
	seller := env.user(t, "sam")
	cv := &model.Conversation{BuyerID: buyer.ID, SellerID: seller.ID, ProductID: 1, Status: model.ConversationStatusActive}
	require.NoError(t, env.repos.Conversations.Create(ctx, cv))

	last, err := env.messages.Last(ctx, cv.ID, buyer.ID)
	require.NoError(t, err)
	assert.Nil(t, last)
}
