package checkout

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/urbanthread/storefront/internal/app/domain/catalog"
	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/storage/memory"
)

func validSubmission() Submission {
	return Submission{
		Items: []order.LineItem{
			{ProductID: 1, Name: "Linen Shirt", Price: 10.00, Quantity: 2},
			{ProductID: 2, Name: "Wool Scarf", Price: 5.00, Quantity: 1},
		},
		PaymentMethod:   order.PaymentCreditCard,
		ShippingAddress: "1 Market St",
		Email:           "buyer@example.com",
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []order.LineItem
		want  float64
	}{
		{
			name: "subtotal plus shipping plus tax",
			items: []order.LineItem{
				{Price: 10.00, Quantity: 2},
				{Price: 5.00, Quantity: 1},
			},
			// 25 + 5 + 2.50
			want: 32.50,
		},
		{
			name:  "single unit",
			items: []order.LineItem{{Price: 19.99, Quantity: 1}},
			want:  26.99,
		},
		{
			name:  "zero-priced cart skips shipping",
			items: []order.LineItem{{Price: 0, Quantity: 3}},
			want:  0,
		},
		{
			name:  "rounds to two decimals",
			items: []order.LineItem{{Price: 0.10, Quantity: 3}},
			want:  5.33,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotal(tc.items)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ComputeTotal = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSubmitRecordsOrder(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	receipt, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.OrderID == 0 {
		t.Fatal("expected a non-zero order id")
	}
	if receipt.TotalAmount != 32.50 {
		t.Fatalf("TotalAmount = %v, want 32.50", receipt.TotalAmount)
	}

	orders := store.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected 1 recorded order, got %d", len(orders))
	}
	if orders[0].ProductID != 1 {
		t.Fatalf("legacy product id = %d, want first item id 1", orders[0].ProductID)
	}
	if len(orders[0].Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(orders[0].Items))
	}
}

func TestSubmitIgnoresDeclaredTotal(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	sub := validSubmission()
	sub.DeclaredTotal = 1.00

	receipt, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.TotalAmount != 32.50 {
		t.Fatalf("TotalAmount = %v, want recomputed 32.50", receipt.TotalAmount)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		wantErr error
	}{
		{
			name:    "empty cart",
			mutate:  func(s *Submission) { s.Items = nil },
			wantErr: ErrEmptyCart,
		},
		{
			name:    "unknown payment method",
			mutate:  func(s *Submission) { s.PaymentMethod = "cheque" },
			wantErr: ErrMissingField,
		},
		{
			name:    "blank shipping address",
			mutate:  func(s *Submission) { s.ShippingAddress = "   " },
			wantErr: ErrMissingField,
		},
		{
			name:    "blank email",
			mutate:  func(s *Submission) { s.Email = "" },
			wantErr: ErrMissingField,
		},
		{
			name:    "negative price",
			mutate:  func(s *Submission) { s.Items[0].Price = -1 },
			wantErr: ErrInvalidItem,
		},
		{
			name:    "non-finite price",
			mutate:  func(s *Submission) { s.Items[0].Price = math.NaN() },
			wantErr: ErrInvalidItem,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New()
			svc := New(store, nil)

			sub := validSubmission()
			tc.mutate(&sub)

			if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Submit error = %v, want %v", err, tc.wantErr)
			}
			if got := len(store.Orders()); got != 0 {
				t.Fatalf("rejected submission recorded %d orders", got)
			}
		})
	}
}

func TestSubmitDefaultsQuantity(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	sub := validSubmission()
	sub.Items = []order.LineItem{{ProductID: 1, Price: 10.00, Quantity: 0}}

	receipt, err := svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// 10 + 5 + 1
	if receipt.TotalAmount != 16.00 {
		t.Fatalf("TotalAmount = %v, want 16.00", receipt.TotalAmount)
	}
}

func TestSubmitToleratesUnknownProduct(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	sub := validSubmission()
	sub.Items = []order.LineItem{{ProductID: 9999, Price: 10.00, Quantity: 1}}

	if _, err := svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := len(store.Orders()); got != 1 {
		t.Fatalf("expected order recorded despite unknown product, got %d", got)
	}
}

func TestConcurrentCheckoutsBumpSalesCount(t *testing.T) {
	store := memory.New()
	product, err := store.CreateProduct(context.Background(), catalog.Product{
		Name:     "Canvas Tote",
		Category: "accessories",
		Price:    12.00,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	svc := New(store, nil)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := validSubmission()
			sub.Items = []order.LineItem{{ProductID: product.ID, Price: 12.00, Quantity: 2}}
			if _, err := svc.Submit(context.Background(), sub); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Submit: %v", err)
	}

	got, err := store.GetProduct(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if want := int64(workers * 2); got.SalesCount != want {
		t.Fatalf("SalesCount = %d, want %d", got.SalesCount, want)
	}
	if orders := store.Orders(); len(orders) != workers {
		t.Fatalf("orders recorded = %d, want %d", len(orders), workers)
	}
}
