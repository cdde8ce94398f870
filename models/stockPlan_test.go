package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func issueOut(id int, itemId int, variantId int, qty int64) StockMovement {
	return StockMovement{ID: id, MovementType: MovementTypeOut, Reason: MovementReasonInvoiceIssue,
		Quantity: qty, ProductId: 1, VariantId: intPtr(variantId), InvoiceItemId: intPtr(itemId)}
}

func reversal(id int, of StockMovement, reason MovementReason) StockMovement {
	return StockMovement{ID: id, MovementType: MovementTypeIn, Reason: reason,
		Quantity: of.Quantity, ProductId: of.ProductId, VariantId: of.VariantId, ReversesMovementId: intPtr(of.ID)}
}

func testItem(id int, variantId *int, qty int64) InvoiceItem {
	return InvoiceItem{ID: id, InvoiceId: 7, ProductId: 1, VariantId: variantId, Quantity: qty}
}

func TestActiveOutMovements_DropsReversedOuts(t *testing.T) {
	o1 := issueOut(10, 1, 100, 3)
	o2 := issueOut(11, 2, 101, 1)
	movements := []StockMovement{o1, o2, reversal(12, o1, MovementReasonInvoiceCancel)}

	active := activeOutMovements(movements)
	require.Len(t, active, 1)
	assert.Equal(t, 11, active[2].ID)

	// the reversed item still counts as issued
	issued := issuedItems(movements)
	assert.True(t, issued[1])
	assert.True(t, issued[2])
}

func TestPlanInvoiceStock_IssuesOnlyUnissuedVariantItems(t *testing.T) {
	items := []InvoiceItem{
		testItem(3, intPtr(100), 2),
		testItem(1, intPtr(101), 1),
		testItem(2, nil, 5), // product without variant: no stock effect
	}
	movements := []StockMovement{issueOut(50, 3, 100, 2)}

	plan := planInvoiceStock(InvoiceStatusPaid, items, movements)
	require.Len(t, plan.Issue, 1)
	assert.Equal(t, 1, plan.Issue[0].ID)
	assert.Empty(t, plan.Release)
}

func TestPlanInvoiceStock_PendingIssuesInItemOrder(t *testing.T) {
	items := []InvoiceItem{testItem(9, intPtr(100), 1), testItem(4, intPtr(101), 1)}
	plan := planInvoiceStock(InvoiceStatusPending, items, nil)
	require.Len(t, plan.Issue, 2)
	assert.Equal(t, []int{4, 9}, []int{plan.Issue[0].ID, plan.Issue[1].ID})
	assert.ElementsMatch(t, []int{100, 101}, plan.variantIds())
}

func TestPlanInvoiceStock_CancelReleasesActiveOuts(t *testing.T) {
	o1 := issueOut(20, 1, 100, 2)
	o2 := issueOut(21, 2, 100, 4)
	items := []InvoiceItem{testItem(1, intPtr(100), 2), testItem(2, intPtr(100), 4)}

	plan := planInvoiceStock(InvoiceStatusCancelled, items, []StockMovement{o1, o2})
	assert.Empty(t, plan.Issue)
	require.Len(t, plan.Release, 2)
	assert.Equal(t, 20, plan.Release[0].ID)
	assert.Equal(t, 21, plan.Release[1].ID)
}

func TestPlanInvoiceStock_CancelTwiceReleasesNothing(t *testing.T) {
	o1 := issueOut(20, 1, 100, 2)
	movements := []StockMovement{o1, reversal(22, o1, MovementReasonInvoiceCancel)}
	plan := planInvoiceStock(InvoiceStatusCancelled, []InvoiceItem{testItem(1, intPtr(100), 2)}, movements)
	assert.Empty(t, plan.Release)
}

func TestPlanInvoiceStock_DraftDoesNothing(t *testing.T) {
	plan := planInvoiceStock(InvoiceStatusDraft, []InvoiceItem{testItem(1, intPtr(100), 2)}, nil)
	assert.Empty(t, plan.Issue)
	assert.Empty(t, plan.Release)
}

func TestFoldMovements_NetsReversals(t *testing.T) {
	in := StockMovement{ID: 1, MovementType: MovementTypeIn, Reason: MovementReasonPurchase, Quantity: 10, ProductId: 1}
	o := issueOut(2, 1, 100, 4)
	p := FoldMovements([]StockMovement{in, o, reversal(3, o, MovementReasonInvoiceDelete)})
	assert.Equal(t, StockProjection{In: 14, Out: 4, Raw: 10, Available: 10}, p)
}

func TestProjectQuantity_FloorsAtZero(t *testing.T) {
	p := ProjectQuantity(3, 5)
	assert.Equal(t, int64(-2), p.Raw)
	assert.Equal(t, int64(0), p.Available)
	assert.True(t, p.IsNegative())

	p = ProjectQuantity(0, 0)
	assert.False(t, p.IsNegative())
	assert.Equal(t, int64(0), p.Available)
}
