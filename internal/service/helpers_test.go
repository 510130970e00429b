package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ssrocks/rishop-backend/internal/db"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tickClock advances one second per reading so ordering by time is deterministic.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickClock() *tickClock {
	return &tickClock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	db       *gorm.DB
	repos    *repository.Repositories
	convs    ConversationService
	messages MessageService
	orders   OrderService
	products ProductService
	users    UserService
	notifs   NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	repos := repository.NewRepositories(conn)
	tx := repository.NewTransactor(conn)
	deps := Deps{Logger: zap.NewNop(), Clock: newTickClock().Now}
	convs := NewConversationService(repos, tx, deps)
	return &testEnv{
		db:       conn,
		repos:    repos,
		convs:    convs,
		messages: NewMessageService(repos, tx, deps),
		orders:   NewOrderService(repos.Orders),
		products: NewProductService(repos.Products, nil, deps),
		users:    NewUserService(repos.Users, deps),
		notifs:   NewNotificationService(convs),
	}
}

func (e *testEnv) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{UID: "uid-" + username, Username: username}
	require.NoError(t, e.repos.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) product(t *testing.T, seller *model.User, price uint, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:             "Calculus textbook",
		Description:      "Lightly used",
		Price:            price,
		StockQuantity:    stock,
		ProductAvailable: stock > 0,
		SellerID:         seller.ID,
	}
	require.NoError(t, e.repos.Products.Create(context.Background(), p))
	return p
}

func (e *testEnv) reloadProduct(t *testing.T, id uint64) *model.Product {
	t.Helper()
	p, err := e.repos.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) reloadConversation(t *testing.T, id uint64) *model.Conversation {
	t.Helper()
	cv, err := e.repos.Conversations.FindByID(context.Background(), id)
	require.NoError(t, err)
	return cv
}

func (e *testEnv) messageCount(t *testing.T, convID uint64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Message{}).Where("conversation_id = ?", convID).Count(&n).Error)
	return n
}

func (e *testEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&n).Error)
	return n
}

func (e *testEnv) conversationCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Conversation{}).Count(&n).Error)
	return n
}

// requireCode asserts err is a *Error of the given kind and code.
func requireCode(t *testing.T, err error, kind error, code string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, code, svcErr.Code)
}
