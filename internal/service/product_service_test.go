package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeImageStore struct {
	got []byte
}

func (f *fakeImageStore) Upload(_ context.Context, sellerID uint64, filename, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.got = b
	return "https://img.example/" + filename, nil
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam")

	tests := []struct {
		name string
		in   CreateProductInput
		code string
	}{
		{"blank name", CreateProductInput{Name: "  ", Price: 10}, "invalid_name"},
		{"long name", CreateProductInput{Name: strings.Repeat("n", 121), Price: 10}, "invalid_name"},
		{"zero price", CreateProductInput{Name: "Lamp"}, "invalid_price"},
		{"negative stock", CreateProductInput{Name: "Lamp", Price: 10, StockQuantity: -1}, "invalid_stock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.products.Create(context.Background(), seller.ID, tt.in)
			requireCode(t, err, ErrValidation, tt.code)
		})
	}
}

func TestCreateAndListProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam")

	lamp, err := env.products.Create(ctx, seller.ID, CreateProductInput{Name: " Desk lamp ", Price: 1500, StockQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", lamp.Name)
	assert.True(t, lamp.ProductAvailable)

	draft, err := env.products.Create(ctx, seller.ID, CreateProductInput{Name: "Chair", Price: 800})
	require.NoError(t, err)
	assert.False(t, draft.ProductAvailable)

	list, total, err := env.products.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, lamp.ID, list[0].ID)

	mine, err := env.products.ListBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	got, err := env.products.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chair", got.Name)

	_, err = env.products.Get(ctx, 999)
	requireCode(t, err, ErrNotFound, "product_not_found")
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.products.UploadImage(ctx, 1, "a.png", "image/png", strings.NewReader("x"))
	requireCode(t, err, ErrPolicyViolation, "storage_disabled")

	store := &fakeImageStore{}
	svc := NewProductService(env.repos.Products, store, Deps{Logger: zap.NewNop()})

	_, err = svc.UploadImage(ctx, 1, "a.txt", "text/plain", strings.NewReader("x"))
	requireCode(t, err, ErrValidation, "invalid_image")

	url, err := svc.UploadImage(ctx, 1, "a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a.png", url)
	assert.Equal(t, "png-bytes", string(store.got))
}
