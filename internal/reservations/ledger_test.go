package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/enums"
	pkgerrors "github.com/luciagrant/mercadito-backend/pkg/errors"
)

type stockRecorder struct {
	deductions map[uuid.UUID]int
}

func (s *stockRecorder) DeductStock(_ context.Context, productID uuid.UUID, qty int) error {
	if s.deductions == nil {
		s.deductions = map[uuid.UUID]int{}
	}
	s.deductions[productID] += qty
	return nil
}

func newLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Reservation{}); err != nil {
		t.Fatalf("migrate reservations: %v", err)
	}
	return conn
}

func TestLedgerCreateAndSum(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()

	stock := &stockRecorder{}
	ledger, err := NewLedger(NewRepository(conn), stock)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	orderID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	rows, err := ledger.Create(ctx, orderID, []Hold{
		{ProductID: productA, Qty: 2},
		{ProductID: productA, Qty: 1},
		{ProductID: productB, Qty: 4},
	})
	if err != nil {
		t.Fatalf("create holds: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	sums, err := NewRepository(conn).SumActiveByProducts(ctx, []uuid.UUID{productA, productB})
	if err != nil {
		t.Fatalf("sum active: %v", err)
	}
	if sums[productA] != 3 || sums[productB] != 4 {
		t.Fatalf("unexpected sums: %+v", sums)
	}
}

func TestSumActiveByVariantGroupsSelectors(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()

	ledger, err := NewLedger(NewRepository(conn), &stockRecorder{})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	productID := uuid.New()
	red := "red"
	blue := "blue"
	if _, err := ledger.Create(ctx, uuid.New(), []Hold{
		{ProductID: productID, Color: &red, Qty: 2},
		{ProductID: productID, Color: &red, Qty: 1},
		{ProductID: productID, Color: &blue, Qty: 4},
		{ProductID: productID, Qty: 5},
	}); err != nil {
		t.Fatalf("create holds: %v", err)
	}

	sums, err := NewRepository(conn).SumActiveByVariant(ctx, []uuid.UUID{productID})
	if err != nil {
		t.Fatalf("sum by variant: %v", err)
	}
	if got := sums[NewVariantKey(productID, &red, nil, nil)]; got != 3 {
		t.Fatalf("expected red sum 3, got %d", got)
	}
	if got := sums[NewVariantKey(productID, &blue, nil, nil)]; got != 4 {
		t.Fatalf("expected blue sum 4, got %d", got)
	}
	// The all-null key is its own bucket, never a wildcard over colors.
	if got := sums[NewVariantKey(productID, nil, nil, nil)]; got != 5 {
		t.Fatalf("expected null-variant sum 5, got %d", got)
	}
}

func TestLedgerCreateValidatesInput(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()

	ledger, err := NewLedger(NewRepository(conn), &stockRecorder{})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	if _, err := ledger.Create(ctx, uuid.Nil, []Hold{{ProductID: uuid.New(), Qty: 1}}); err == nil {
		t.Fatal("expected error for nil order id")
	}
	_, err = ledger.Create(ctx, uuid.New(), []Hold{{ProductID: uuid.New(), Qty: 0}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLedgerConsumeIsIdempotent(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()

	stock := &stockRecorder{}
	ledger, err := NewLedger(NewRepository(conn), stock)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	orderID := uuid.New()
	productID := uuid.New()
	if _, err := ledger.Create(ctx, orderID, []Hold{{ProductID: productID, Qty: 3}}); err != nil {
		t.Fatalf("create holds: %v", err)
	}

	consumed, err := ledger.ConsumeAndDeductStock(ctx, orderID)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if consumed != 1 {
		t.Fatalf("expected 1 consumed, got %d", consumed)
	}
	if stock.deductions[productID] != 3 {
		t.Fatalf("expected deduction of 3, got %d", stock.deductions[productID])
	}

	consumed, err = ledger.ConsumeAndDeductStock(ctx, orderID)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if consumed != 0 {
		t.Fatalf("expected no-op on second consume, got %d", consumed)
	}
	if stock.deductions[productID] != 3 {
		t.Fatalf("stock deducted twice: %d", stock.deductions[productID])
	}
}

func TestLedgerReleaseLeavesStockAlone(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()

	stock := &stockRecorder{}
	ledger, err := NewLedger(NewRepository(conn), stock)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	orderID := uuid.New()
	productID := uuid.New()
	if _, err := ledger.Create(ctx, orderID, []Hold{{ProductID: productID, Qty: 2}}); err != nil {
		t.Fatalf("create holds: %v", err)
	}

	released, err := ledger.Release(ctx, orderID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released != 1 {
		t.Fatalf("expected 1 released, got %d", released)
	}
	if len(stock.deductions) != 0 {
		t.Fatalf("release must not touch stock: %+v", stock.deductions)
	}

	sums, err := NewRepository(conn).SumActiveByProducts(ctx, []uuid.UUID{productID})
	if err != nil {
		t.Fatalf("sum active: %v", err)
	}
	if sums[productID] != 0 {
		t.Fatalf("expected no active holds, got %d", sums[productID])
	}

	// Releasing again is a no-op.
	released, err = ledger.Release(ctx, orderID)
	if err != nil {
		t.Fatalf("second release: %v", err)
	}
	if released != 0 {
		t.Fatalf("expected no-op, got %d", released)
	}
}

func TestCountStaleActive(t *testing.T) {
	t.Parallel()
	conn := newLedgerTestDB(t)
	ctx := context.Background()
	repo := NewRepository(conn)

	old := models.Reservation{
		OrderID:   uuid.New(),
		ProductID: uuid.New(),
		Qty:       1,
		Status:    enums.ReservationStatusActive,
	}
	if err := conn.Create(&old).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	backdated := time.Now().Add(-96 * time.Hour)
	if err := conn.Model(&models.Reservation{}).Where("id = ?", old.ID).
		UpdateColumn("created_at", backdated).Error; err != nil {
		t.Fatalf("backdate reservation: %v", err)
	}

	fresh := models.Reservation{
		OrderID:   uuid.New(),
		ProductID: uuid.New(),
		Qty:       1,
		Status:    enums.ReservationStatusActive,
	}
	if err := conn.Create(&fresh).Error; err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	count, err := repo.CountStaleActive(ctx, time.Now().Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("count stale: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stale reservation, got %d", count)
	}
}
