package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/internal/app/storage/memory"
)

func seed(t *testing.T, svc *Service, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := svc.Create(context.Background(), Fields{Name: name, Category: "apparel", Price: 10}); err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, Fields{Name: "Shirt", Category: "apparel", Price: 25})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, Fields{Name: "Scarf", Category: "accessories", Price: 15})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Fatalf("ids %d, %d are not sequential", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set on create")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)

	tests := []struct {
		name   string
		fields Fields
	}{
		{"missing name", Fields{Category: "apparel"}},
		{"missing category", Fields{Name: "Shirt"}},
		{"negative price", Fields{Name: "Shirt", Category: "apparel", Price: -1}},
		{"rate out of range", Fields{Name: "Shirt", Category: "apparel", Rate: 6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.fields); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestListFiltersByCategoryIgnoringCase(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, Fields{Name: "Shirt", Category: "Apparel", Price: 25}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, Fields{Name: "Scarf", Category: "accessories", Price: 15}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	products, err := svc.List(ctx, "apparel")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Shirt" {
		t.Fatalf("List(apparel) = %+v", products)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered List returned %d products", len(all))
	}
}

func TestNewArrivalsDefaultsAndOrders(t *testing.T) {
	svc := New(memory.New(), nil)
	seed(t, svc, "A", "B", "C", "D", "E", "F")

	arrivals, err := svc.NewArrivals(context.Background(), 0)
	if err != nil {
		t.Fatalf("NewArrivals: %v", err)
	}
	if len(arrivals) != DefaultSectionLimit {
		t.Fatalf("default limit returned %d products, want %d", len(arrivals), DefaultSectionLimit)
	}
	if arrivals[0].Name != "F" {
		t.Fatalf("newest product = %q, want F", arrivals[0].Name)
	}
}

func TestBestSellersRankBySalesCount(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	seed(t, svc, "Slow", "Fast")

	products, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// "Slow" was created first, so it sits last in the newest-first list.
	// Selling it makes it outrank the newer product.
	slow := products[len(products)-1]
	_, err = store.RecordCheckout(context.Background(), order.Order{
		ProductID:       slow.ID,
		PaymentMethod:   order.PaymentCreditCard,
		ShippingAddress: "1 Market St",
		Email:           "buyer@example.com",
		Items:           []order.LineItem{{ProductID: slow.ID, Price: 10, Quantity: 7}},
	})
	if err != nil {
		t.Fatalf("RecordCheckout: %v", err)
	}

	best, err := svc.BestSellers(context.Background(), 2)
	if err != nil {
		t.Fatalf("BestSellers: %v", err)
	}
	if best[0].Name != "Slow" {
		t.Fatalf("top seller = %q, want Slow", best[0].Name)
	}
}

func TestUpdatePreservesID(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Fields{Name: "Shirt", Category: "apparel", Price: 25})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, Fields{Name: "Linen Shirt", Category: "apparel", Price: 30})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("update changed id from %d to %d", created.ID, updated.ID)
	}
	if updated.Name != "Linen Shirt" || updated.Price != 30 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestMutationsOnMissingProduct(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 42, Fields{Name: "X", Category: "y"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Update error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Delete(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesProduct(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Fields{Name: "Shirt", Category: "apparel", Price: 25})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	deleted, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.Name != "Shirt" {
		t.Fatalf("deleted product = %+v", deleted)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}
