package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// Repositories groups the stores bound to one *gorm.DB, either the pool or an open transaction.
type Repositories struct {
	Users         UserRepository
	Products      ProductRepository
	Conversations ConversationRepository
	Messages      MessageRepository
	Orders        OrderRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Products:      NewProductRepository(db),
		Conversations: NewConversationRepository(db),
		Messages:      NewMessageRepository(db),
		Orders:        NewOrderRepository(db),
	}
}

// Transactor runs fn against repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(r *Repositories) error) error {
	if t.db == nil {
		return ErrDBNotReady
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
