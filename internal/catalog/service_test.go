package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/internal/reservations"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
	"github.com/luciagrant/mercadito-backend/pkg/logger"
	"github.com/luciagrant/mercadito-backend/pkg/pagination"
)

type staticReserved map[uuid.UUID]int

func (s staticReserved) SumActiveByProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, id := range ids {
		out[id] = s[id]
	}
	return out, nil
}

func (s staticReserved) SumActiveByVariant(_ context.Context, ids []uuid.UUID) (map[reservations.VariantKey]int, error) {
	out := map[reservations.VariantKey]int{}
	for _, id := range ids {
		if s[id] != 0 {
			out[reservations.NewVariantKey(id, nil, nil, nil)] = s[id]
		}
	}
	return out, nil
}

type keyedReserved map[reservations.VariantKey]int

func (k keyedReserved) SumActiveByProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for key, qty := range k {
		out[key.ProductID] += qty
	}
	return out, nil
}

func (k keyedReserved) SumActiveByVariant(_ context.Context, _ []uuid.UUID) (map[reservations.VariantKey]int, error) {
	return k, nil
}

func newCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Collection{}); err != nil {
		t.Fatalf("migrate collections: %v", err)
	}
	ddl := `CREATE TABLE products (
		id text PRIMARY KEY,
		name text NOT NULL,
		slug text NOT NULL UNIQUE,
		description text,
		price_cents integer NOT NULL,
		currency text NOT NULL DEFAULT 'MXN',
		stock integer,
		colors text,
		sizes text,
		materials text,
		image_url text,
		is_active numeric NOT NULL DEFAULT true,
		collection_id text,
		created_at datetime,
		updated_at datetime
	)`
	if err := conn.Exec(ddl).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}
	return conn
}

func newCatalogService(t *testing.T, conn *gorm.DB, reserved staticReserved) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), reserved, logg)
	require.NoError(t, err)
	return svc
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	stock := 10
	product := &models.Product{Stock: &stock}
	assert.Equal(t, 10, Availability(product, 0))
	assert.Equal(t, 7, Availability(product, 3))
	assert.Equal(t, 0, Availability(product, 15))

	negative := -2
	assert.Equal(t, 0, Availability(&models.Product{Stock: &negative}, 0))
	assert.Equal(t, 0, Availability(&models.Product{}, 0))
	assert.Equal(t, 0, Availability(nil, 0))
}

func TestSlugify(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "linen-shirt", Slugify("Linen Shirt"))
	assert.Equal(t, "tote-bag-2", Slugify("  Tote  Bag  #2 "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestAvailableStockUsesReservations(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	ctx := context.Background()

	stock := 8
	product := &models.Product{
		Name:       "Ceramic Mug",
		Slug:       "ceramic-mug",
		PriceCents: 15000,
		Stock:      &stock,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(product).Error)

	svc := newCatalogService(t, conn, staticReserved{product.ID: 5})
	available, err := svc.AvailableStock(ctx, reservations.NewVariantKey(product.ID, nil, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 3, available)
}

func TestAvailableStockMatchesVariantExactly(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	ctx := context.Background()

	stock := 5
	product := &models.Product{
		Name:       "Rebozo",
		Slug:       "rebozo",
		PriceCents: 42000,
		Stock:      &stock,
		Colors:     []string{"red", "blue"},
		IsActive:   true,
	}
	require.NoError(t, conn.Create(product).Error)

	red := "red"
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), keyedReserved{
		reservations.NewVariantKey(product.ID, &red, nil, nil): 5,
	}, logg)
	require.NoError(t, err)

	// A red hold never counts against blue, and null only matches null.
	blue := "blue"
	available, err := svc.AvailableStock(ctx, reservations.NewVariantKey(product.ID, &blue, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 5, available)

	available, err = svc.AvailableStock(ctx, reservations.NewVariantKey(product.ID, &red, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	available, err = svc.AvailableStock(ctx, reservations.NewVariantKey(product.ID, nil, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 5, available)
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	svc := newCatalogService(t, conn, staticReserved{})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateProductDefaultsSlug(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	svc := newCatalogService(t, conn, staticReserved{})

	created, err := svc.CreateProduct(context.Background(), &models.Product{
		Name:       "Woven Basket",
		PriceCents: 30000,
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "woven-basket", created.Slug)

	found, err := svc.GetProductBySlug(context.Background(), "woven-basket")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestListProductsPagination(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	svc := newCatalogService(t, conn, staticReserved{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateProduct(ctx, &models.Product{
			Name:       "Item " + uuid.NewString()[:8],
			PriceCents: 1000 * (i + 1),
			IsActive:   true,
		})
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, ListFilter{ActiveOnly: true}, pagination.Params{Limit: 3})
	require.NoError(t, err)
	// Limit plus the next-page probe row.
	assert.Len(t, page, 4)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	svc := newCatalogService(t, conn, staticReserved{})
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, &models.Product{Name: "Ephemeral", PriceCents: 100})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeductStockSkipsUntracked(t *testing.T) {
	t.Parallel()
	conn := newCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tracked := 5
	withStock := &models.Product{Name: "Tracked", Slug: "tracked", PriceCents: 100, Stock: &tracked}
	require.NoError(t, conn.Create(withStock).Error)
	untracked := &models.Product{Name: "Untracked", Slug: "untracked", PriceCents: 100}
	require.NoError(t, conn.Create(untracked).Error)

	require.NoError(t, repo.DeductStock(ctx, withStock.ID, 2))
	require.NoError(t, repo.DeductStock(ctx, untracked.ID, 2))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", withStock.ID).Error)
	require.NotNil(t, reloaded.Stock)
	assert.Equal(t, 3, *reloaded.Stock)

	reloaded = models.Product{}
	require.NoError(t, conn.First(&reloaded, "id = ?", untracked.ID).Error)
	assert.Nil(t, reloaded.Stock)
}
