package db

import (
	"testing"

	"github.com/ssrocks/rishop-backend/internal/config"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{DBUser: "app", DBPassword: "secret", DBName: "shop", DBPort: "3306"}

	tests := []struct {
		name     string
		host     string
		instance string
		want     string
	}{
		{"plain host", "db.internal", "", "app:secret@tcp(db.internal:3306)/shop?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"tcp wrapped", "tcp(10.0.0.5:3307)", "", "app:secret@tcp(10.0.0.5:3307)/shop?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"unix wrapped", "unix(/tmp/mysql.sock)", "", "app:secret@unix(/tmp/mysql.sock)/shop?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"socket path", "/var/run/mysqld.sock", "", "app:secret@unix(/var/run/mysqld.sock)/shop?charset=utf8mb4&parseTime=True&loc=UTC"},
		{"cloud sql", "ignored", "proj:asia-northeast1:db", "app:secret@unix(/cloudsql/proj:asia-northeast1:db)/shop?charset=utf8mb4&parseTime=True&loc=UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.DBHost = tt.host
			cfg.InstanceConnectionName = tt.instance
			assert.Equal(t, tt.want, BuildDSN(&cfg))
		})
	}
}

func TestConnectSQLiteAndMigrate(t *testing.T) {
	conn, err := Connect(&config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	for _, m := range model.All() {
		assert.True(t, conn.Migrator().HasTable(m))
	}
	assert.True(t, conn.Migrator().HasIndex(&model.Conversation{}, "uk_conversations_buyer_seller_product"))
	assert.True(t, conn.Migrator().HasIndex(&model.Order{}, "uk_orders_conversation"))
}
