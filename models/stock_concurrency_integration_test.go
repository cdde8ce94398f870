package models_test

import (
	"errors"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/stock_backend/models"
)

func TestCreateInvoice_ConcurrentOversellHasOneWinner(t *testing.T) {
	ctx := startIntegrationEnv(t)
	f := newStockFixture(t, ctx)
	f.purchase(t, ctx, 5, "")

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = models.CreateInvoice(ctx, f.invoiceInput(models.InvoiceStatusPending, 3))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrInsufficientStock):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one invoice to win, got %d", succeeded)
	}
	f.assertStock(t, ctx, 2)

	out := models.MovementTypeOut
	if n := countMovements(t, ctx, models.StockMovementFilter{ProductId: f.product.ID, MovementType: &out}); n != 1 {
		t.Fatalf("expected 1 OUT movement, got %d", n)
	}
}

func TestCancelAndDeleteRace_ReleaseOnce(t *testing.T) {
	ctx := startIntegrationEnv(t)
	f := newStockFixture(t, ctx)
	f.purchase(t, ctx, 10, "")

	invoice, err := models.CreateInvoice(ctx, f.invoiceInput(models.InvoiceStatusPending, 4))
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	f.assertStock(t, ctx, 6)

	var cancelErr, deleteErr error
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, cancelErr = models.UpdateInvoiceStatus(ctx, invoice.ID, models.InvoiceStatusCancelled)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, deleteErr = models.DeleteInvoice(ctx, invoice.ID)
	}()
	close(start)
	wg.Wait()

	// the cancel may lose to the delete and find nothing left
	if cancelErr != nil && !errors.Is(cancelErr, models.ErrNotFound) {
		t.Fatalf("cancel: %v", cancelErr)
	}
	if deleteErr != nil {
		t.Fatalf("delete: %v", deleteErr)
	}
	f.assertStock(t, ctx, 10)

	in := models.MovementTypeIn
	reversals := 0
	for _, m := range collectMovements(t, ctx, models.StockMovementFilter{ProductId: f.product.ID, MovementType: &in}) {
		if m.ReversesMovementId != nil {
			reversals++
		}
	}
	if reversals != 1 {
		t.Fatalf("expected the OUT to be reversed once, got %d", reversals)
	}
}
