package models

import (
	"sort"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"gorm.io/gorm"
)

// SkippedInvoiceItem is an item a lenient status update could not issue.
type SkippedInvoiceItem struct {
	InvoiceItemId int   `json:"invoice_item_id"`
	ProductId     int   `json:"product_id"`
	VariantId     int   `json:"variant_id"`
	Requested     int64 `json:"requested"`
	Available     int64 `json:"available"`
}

type invoiceStockPlan struct {
	Issue   []InvoiceItem
	Release []StockMovement
}

func (p invoiceStockPlan) variantIds() []int {
	ids := variantIdsOf(p.Issue, func(it InvoiceItem) *int { return it.VariantId })
	ids = append(ids, variantIdsOf(p.Release, func(m StockMovement) *int { return m.VariantId })...)
	return ids
}

// activeOutMovements maps invoice item id to its OUT movement that no IN has reversed yet.
func activeOutMovements(movements []StockMovement) map[int]StockMovement {
	outs := make(map[int]StockMovement)
	reversed := make(map[int]bool)
	for _, m := range movements {
		switch {
		case m.MovementType == MovementTypeOut && m.InvoiceItemId != nil:
			outs[*m.InvoiceItemId] = m
		case m.MovementType == MovementTypeIn && m.ReversesMovementId != nil:
			reversed[*m.ReversesMovementId] = true
		}
	}
	for itemId, m := range outs {
		if reversed[m.ID] {
			delete(outs, itemId)
		}
	}
	return outs
}

// issuedItems is the set of items that ever received an OUT, reversed or not.
func issuedItems(movements []StockMovement) map[int]bool {
	issued := make(map[int]bool)
	for _, m := range movements {
		if m.MovementType == MovementTypeOut && m.InvoiceItemId != nil {
			issued[*m.InvoiceItemId] = true
		}
	}
	return issued
}

// planInvoiceStock decides which items get an OUT and which OUTs get reversed when an
// invoice moves to status to. Entering PENDING or PAID issues every variant item that
// has never been issued; entering CANCELLED reverses every active OUT.
func planInvoiceStock(to InvoiceStatus, items []InvoiceItem, movements []StockMovement) invoiceStockPlan {
	var plan invoiceStockPlan
	switch {
	case to.IsStockAffecting():
		issued := issuedItems(movements)
		for _, item := range items {
			if item.VariantId == nil || issued[item.ID] {
				continue
			}
			plan.Issue = append(plan.Issue, item)
		}
		sort.Slice(plan.Issue, func(i, j int) bool { return plan.Issue[i].ID < plan.Issue[j].ID })
	case to == InvoiceStatusCancelled:
		plan.Release = planInvoiceRelease(movements)
	}
	return plan
}

// planInvoiceRelease lists the OUTs to offset when an invoice stops holding stock.
func planInvoiceRelease(movements []StockMovement) []StockMovement {
	active := activeOutMovements(movements)
	release := make([]StockMovement, 0, len(active))
	for _, m := range active {
		release = append(release, m)
	}
	sort.Slice(release, func(i, j int) bool { return release[i].ID < release[j].ID })
	return release
}

// issueInvoiceItems appends one OUT per item and decrements the counters. Under the strict
// policy the first shortfall aborts with *InsufficientStockError; under lenient it is skipped.
func issueInvoiceItems(tx *gorm.DB, invoice *Invoice, items []InvoiceItem, variants map[int]*ProductVariant, policy string) ([]SkippedInvoiceItem, error) {
	skipped := make([]SkippedInvoiceItem, 0)
	for _, item := range items {
		v := variants[*item.VariantId]
		if v == nil {
			return nil, &NotFoundError{Resource: "product_variant", Id: *item.VariantId}
		}
		projection, err := projectStock(tx, StockMovementFilter{ProductId: item.ProductId, VariantId: item.VariantId})
		if err != nil {
			return nil, err
		}
		available := projection.Available
		if v.StockQuantity < available {
			available = v.StockQuantity
		}
		if item.Quantity > available {
			if policy == config.StockPolicyStrict {
				return nil, &InsufficientStockError{
					ProductId: item.ProductId,
					VariantId: v.ID,
					Requested: item.Quantity,
					Available: available,
				}
			}
			skipped = append(skipped, SkippedInvoiceItem{
				InvoiceItemId: item.ID,
				ProductId:     item.ProductId,
				VariantId:     v.ID,
				Requested:     item.Quantity,
				Available:     available,
			})
			continue
		}

		itemId := item.ID
		invoiceId := invoice.ID
		if err := AppendStockMovement(tx, &StockMovement{
			MovementType:  MovementTypeOut,
			Reason:        MovementReasonInvoiceIssue,
			Quantity:      item.Quantity,
			ProductId:     item.ProductId,
			VariantId:     item.VariantId,
			WarehouseId:   invoice.WarehouseId,
			InvoiceItemId: &itemId,
			InvoiceId:     &invoiceId,
		}); err != nil {
			return nil, err
		}
		if err := adjustVariantStock(tx, v, -item.Quantity); err != nil {
			return nil, err
		}
	}
	return skipped, nil
}

// releaseInvoiceMovements appends a compensating IN for each OUT and restores the counters.
// The OUT rows stay in the ledger.
func releaseInvoiceMovements(tx *gorm.DB, outs []StockMovement, variants map[int]*ProductVariant, reason MovementReason) error {
	for _, out := range outs {
		reverses := out.ID
		if err := AppendStockMovement(tx, &StockMovement{
			MovementType:       MovementTypeIn,
			Reason:             reason,
			Quantity:           out.Quantity,
			ProductId:          out.ProductId,
			VariantId:          out.VariantId,
			WarehouseId:        out.WarehouseId,
			ShelfId:            out.ShelfId,
			InvoiceItemId:      out.InvoiceItemId,
			InvoiceId:          out.InvoiceId,
			ReversesMovementId: &reverses,
		}); err != nil {
			return err
		}
		if out.VariantId == nil {
			continue
		}
		v := variants[*out.VariantId]
		if v == nil {
			return &NotFoundError{Resource: "product_variant", Id: *out.VariantId}
		}
		if err := adjustVariantStock(tx, v, out.Quantity); err != nil {
			return err
		}
	}
	return nil
}
