package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type Invoice struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Type              InvoiceType     `gorm:"size:20;not null;default:'INVOICE'" json:"type"`
	Status            InvoiceStatus   `gorm:"size:20;not null;index" json:"status"`
	Date              time.Time       `gorm:"not null;index" json:"date"`
	DueDate           *time.Time      `json:"due_date"`
	CustomerId        int             `gorm:"index;not null" json:"customer_id"`
	DeliveryMethodId  *int            `gorm:"index" json:"delivery_method_id"`
	WarehouseId       *int            `gorm:"index" json:"warehouse_id"`
	PaymentMethod     string          `gorm:"size:50" json:"payment_method"`
	Notes             string          `gorm:"type:text" json:"notes"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"shipping_cost"`
	OverallDiscount   decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"overall_discount"`
	DeductTax         bool            `gorm:"not null;default:false" json:"deduct_tax"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"subtotal"`
	Tax               decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"tax"`
	Total             decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total"`
	TotalSecondary    decimal.Decimal `gorm:"type:decimal(24,4);not null;default:0" json:"total_secondary_currency"`
	SecondaryCurrency string          `gorm:"size:3" json:"secondary_currency"`
	Items             []InvoiceItem   `gorm:"foreignKey:InvoiceId" json:"items"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	InvoiceId          int             `gorm:"index;not null" json:"invoice_id"`
	ProductId          int             `gorm:"index;not null" json:"product_id"`
	VariantId          *int            `gorm:"index" json:"variant_id"`
	Quantity           int64           `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"discount_percentage"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (item InvoiceItem) line() InvoiceLine {
	return InvoiceLine{Quantity: item.Quantity, UnitPrice: item.UnitPrice, DiscountPercentage: item.DiscountPercentage}
}

type NewInvoice struct {
	Type             InvoiceType      `json:"type"`
	Status           InvoiceStatus    `json:"status"`
	Date             *time.Time       `json:"date"`
	DueDate          *time.Time       `json:"due_date"`
	CustomerId       int              `json:"customer_id" validate:"required,gt=0"`
	DeliveryMethodId *int             `json:"delivery_method_id" validate:"omitempty,gt=0"`
	WarehouseId      *int             `json:"warehouse_id" validate:"omitempty,gt=0"`
	PaymentMethod    string           `json:"payment_method" validate:"max=50"`
	Notes            string           `json:"notes"`
	ShippingCost     decimal.Decimal  `json:"shipping_cost"`
	OverallDiscount  decimal.Decimal  `json:"overall_discount"`
	DeductTax        bool             `json:"deduct_tax"`
	Items            []NewInvoiceItem `json:"items"`
}

type NewInvoiceItem struct {
	ProductId          int             `json:"product_id"`
	VariantId          *int            `json:"variant_id"`
	Quantity           int64           `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// validate checks shape and ranges and fills defaults. It never reads storage.
func (input *NewInvoice) validate() error {
	if len(input.Items) == 0 {
		return newValidationError("items", "At least one item is required to create an invoice.")
	}
	if input.Type == "" {
		input.Type = InvoiceTypeInvoice
	}
	if _, ok := invoiceTypes[string(input.Type)]; !ok {
		return newValidationError("type", "invalid invoice type %q", input.Type)
	}
	if input.Status == "" {
		input.Status = InvoiceStatusDraft
	}
	if !IsInitialInvoiceStatus(input.Status) {
		return newValidationError("status", "an invoice cannot be created as %s", input.Status)
	}
	if err := validateInvoiceAmounts(input.ShippingCost, input.OverallDiscount); err != nil {
		return err
	}
	if input.Date != nil && input.DueDate != nil && input.DueDate.Before(*input.Date) {
		return newValidationError("due_date", "Due date cannot be before the invoice date.")
	}
	for i, item := range input.Items {
		if err := item.validate(); err != nil {
			return prefixValidation(err, "items", i)
		}
	}
	return validateInput(input)
}

func (item NewInvoiceItem) validate() error {
	if item.ProductId <= 0 {
		return newValidationError("product_id", "is required")
	}
	if item.VariantId != nil && *item.VariantId <= 0 {
		return newValidationError("variant_id", "must be positive")
	}
	if item.Quantity <= 0 {
		return newValidationError("quantity", "Quantity must be greater than 0.")
	}
	if item.UnitPrice.IsNegative() {
		return newValidationError("unit_price", "Unit price cannot be negative.")
	}
	if !utils.IsPercent(item.DiscountPercentage) {
		return newValidationError("discount_percentage", "Discount percentage must be between 0 and 100.")
	}
	return nil
}

func (input *NewInvoice) validateReferences(ctx context.Context) error {
	if err := requireExists[Customer](ctx, "customer", input.CustomerId); err != nil {
		return err
	}
	if err := requireExistsOptional[DeliveryMethod](ctx, "delivery_method", input.DeliveryMethodId); err != nil {
		return err
	}
	if err := validateLocation(ctx, input.WarehouseId, nil); err != nil {
		return err
	}
	checked := make(map[int]bool)
	for _, item := range input.Items {
		if checked[item.ProductId] {
			continue
		}
		if err := requireExists[Product](ctx, "product", item.ProductId); err != nil {
			return err
		}
		checked[item.ProductId] = true
	}
	return nil
}

// checkRequestedStock aggregates requested quantity per variant and compares it with the
// ledger projection. The variants must already be row-locked by tx.
func checkRequestedStock(tx *gorm.DB, items []NewInvoiceItem, variants map[int]*ProductVariant) error {
	requested := make(map[int]int64)
	order := make([]int, 0)
	for i, item := range items {
		if item.VariantId == nil {
			continue
		}
		v := variants[*item.VariantId]
		if v == nil {
			return &NotFoundError{Resource: "product_variant", Id: *item.VariantId}
		}
		if v.ProductId != item.ProductId {
			return prefixValidation(newValidationError("variant_id", "variant %d does not belong to product %d", v.ID, item.ProductId), "items", i)
		}
		if _, ok := requested[v.ID]; !ok {
			order = append(order, v.ID)
		}
		requested[v.ID] += item.Quantity
	}
	for _, variantId := range order {
		v := variants[variantId]
		projection, err := projectStock(tx, StockMovementFilter{ProductId: v.ProductId, VariantId: &variantId})
		if err != nil {
			return err
		}
		if requested[variantId] > projection.Available {
			return &InsufficientStockError{
				ProductId: v.ProductId,
				VariantId: variantId,
				Requested: requested[variantId],
				Available: projection.Available,
			}
		}
	}
	return nil
}

// applyTotals recomputes every cached money field from the items and invoice-level inputs.
func (inv *Invoice) applyTotals() {
	lines := make([]InvoiceLine, 0, len(inv.Items))
	for _, item := range inv.Items {
		lines = append(lines, item.line())
	}
	totals := ComputeInvoiceTotals(InvoiceTotalsInput{
		Lines:           lines,
		ShippingCost:    inv.ShippingCost,
		OverallDiscount: inv.OverallDiscount,
		DeductTax:       inv.DeductTax,
		TaxRate:         config.TaxRate(),
		ExchangeRate:    config.ExchangeRate(),
		Scale:           config.MoneyScale(),
	})
	for i := range inv.Items {
		inv.Items[i].TotalPrice = totals.LineTotals[i]
	}
	inv.Subtotal = totals.Subtotal
	inv.Tax = totals.Tax
	inv.Total = totals.Total
	inv.TotalSecondary = totals.TotalSecondary
	inv.SecondaryCurrency = config.SecondaryCurrencyCode()
}

// CreateInvoice validates against live stock, persists the invoice with its items and
// totals, and issues stock when the initial status holds it. Any shortfall aborts everything.
func CreateInvoice(ctx context.Context, input *NewInvoice) (invoice *Invoice, err error) {
	ctx, span := startSpan(ctx, "CreateInvoice", attribute.Int("customer_id", input.CustomerId))
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := input.validateReferences(ctx); err != nil {
		return nil, err
	}

	variantIds := variantIdsOf(input.Items, func(it NewInvoiceItem) *int { return it.VariantId })
	release := utils.ObtainStockLocks(ctx, variantIds, "invoice.go", "CreateInvoice")
	defer release()

	date := time.Now().UTC()
	if input.Date != nil {
		date = *input.Date
	}
	invoice = &Invoice{
		Type:             input.Type,
		Status:           input.Status,
		Date:             date,
		DueDate:          input.DueDate,
		CustomerId:       input.CustomerId,
		DeliveryMethodId: input.DeliveryMethodId,
		WarehouseId:      input.WarehouseId,
		PaymentMethod:    input.PaymentMethod,
		Notes:            input.Notes,
		ShippingCost:     input.ShippingCost,
		OverallDiscount:  input.OverallDiscount,
		DeductTax:        input.DeductTax,
	}
	for _, item := range input.Items {
		invoice.Items = append(invoice.Items, InvoiceItem{
			ProductId:          item.ProductId,
			VariantId:          item.VariantId,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
		})
	}
	invoice.applyTotals()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants, err := lockVariants(tx, variantIds)
		if err != nil {
			return err
		}
		if err := checkRequestedStock(tx, input.Items, variants); err != nil {
			return err
		}
		// items are created through the association
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		plan := planInvoiceStock(invoice.Status, invoice.Items, nil)
		_, err = issueInvoiceItems(tx, invoice, plan.Issue, variants, config.StockPolicyStrict)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// InvoiceStatusResult reports what a status update did to stock.
type InvoiceStatusResult struct {
	Invoice        *Invoice             `json:"invoice"`
	PreviousStatus InvoiceStatus        `json:"previous_status"`
	Issued         int                  `json:"issued"`
	Released       int                  `json:"released"`
	Skipped        []SkippedInvoiceItem `json:"skipped"`
}

func UpdateInvoiceStatus(ctx context.Context, id int, status InvoiceStatus) (*InvoiceStatusResult, error) {
	return UpdateInvoiceStatusWithPolicy(ctx, id, status, config.InvoiceStockPolicy())
}

// UpdateInvoiceStatusWithPolicy moves an invoice through the state machine and issues or
// reverses stock for it in one transaction. Setting the current status again is a no-op.
func UpdateInvoiceStatusWithPolicy(ctx context.Context, id int, status InvoiceStatus, policy string) (result *InvoiceStatusResult, err error) {
	ctx, span := startSpan(ctx, "UpdateInvoiceStatus", attribute.Int("invoice_id", id), attribute.String("status", string(status)))
	defer func() { endSpan(span, err) }()

	if !status.IsValid() {
		return nil, newValidationError("status", "invalid invoice status %q", status)
	}
	// unlocked read, only to know which redis locks to take
	current, err := fetchModel[Invoice](ctx, "invoice", id, "Items")
	if err != nil {
		return nil, err
	}
	variantIds := variantIdsOf(current.Items, func(it InvoiceItem) *int { return it.VariantId })
	release := utils.ObtainStockLocks(ctx, variantIds, "invoice.go", "UpdateInvoiceStatus")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		result = &InvoiceStatusResult{Invoice: invoice, PreviousStatus: invoice.Status, Skipped: []SkippedInvoiceItem{}}
		if invoice.Status == status {
			return nil
		}
		if !CanTransition(invoice.Status, status) {
			return newValidationError("status", "cannot change status from %s to %s", invoice.Status, status)
		}

		movements, err := movementsForInvoiceItems(tx, itemIdsOf(invoice.Items))
		if err != nil {
			return err
		}
		plan := planInvoiceStock(status, invoice.Items, movements)
		variants, err := lockVariants(tx, plan.variantIds())
		if err != nil {
			return err
		}
		if len(plan.Issue) > 0 {
			skipped, err := issueInvoiceItems(tx, invoice, plan.Issue, variants, policy)
			if err != nil {
				return err
			}
			result.Skipped = skipped
			result.Issued = len(plan.Issue) - len(skipped)
		}
		if len(plan.Release) > 0 {
			if err := releaseInvoiceMovements(tx, plan.Release, variants, MovementReasonInvoiceCancel); err != nil {
				return err
			}
			result.Released = len(plan.Release)
		}

		invoice.Status = status
		return tx.Model(&Invoice{}).Where("id = ?", invoice.ID).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseInvoicePatch accepts a body whose only field is status.
func ParseInvoicePatch(body []byte) (InvoiceStatus, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", newValidationError("", "invalid JSON body")
	}
	for name := range fields {
		if name != "status" {
			return "", newValidationError(name, "Only status can be updated.")
		}
	}
	raw, ok := fields["status"]
	if !ok {
		return "", newValidationError("status", "is required")
	}
	var status InvoiceStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return "", newValidationError("status", "%s", err.Error())
	}
	return status, nil
}

type InvoiceDeleteResult struct {
	InvoiceId int `json:"invoice_id"`
	Released  int `json:"released"`
}

// DeleteInvoice reverses every active OUT of the invoice, whatever its status, then
// removes the invoice and its items. Ledger rows are kept.
func DeleteInvoice(ctx context.Context, id int) (result *InvoiceDeleteResult, err error) {
	ctx, span := startSpan(ctx, "DeleteInvoice", attribute.Int("invoice_id", id))
	defer func() { endSpan(span, err) }()

	current, err := fetchModel[Invoice](ctx, "invoice", id, "Items")
	if err != nil {
		return nil, err
	}
	variantIds := variantIdsOf(current.Items, func(it InvoiceItem) *int { return it.VariantId })
	release := utils.ObtainStockLocks(ctx, variantIds, "invoice.go", "DeleteInvoice")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, id)
		if err != nil {
			return err
		}
		movements, err := movementsForInvoiceItems(tx, itemIdsOf(invoice.Items))
		if err != nil {
			return err
		}
		outs := planInvoiceRelease(movements)
		variants, err := lockVariants(tx, invoiceStockPlan{Release: outs}.variantIds())
		if err != nil {
			return err
		}
		if err := releaseInvoiceMovements(tx, outs, variants, MovementReasonInvoiceDelete); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Invoice{}, invoice.ID).Error; err != nil {
			return err
		}
		result = &InvoiceDeleteResult{InvoiceId: invoice.ID, Released: len(outs)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func lockInvoice(tx *gorm.DB, id int) (*Invoice, error) {
	var invoice Invoice
	if err := tx.Clauses(lockForUpdate()).Where("id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "invoice", Id: id}
		}
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", id).Order("id").Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func itemIdsOf(items []InvoiceItem) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return fetchModel[Invoice](ctx, "invoice", id, "Items")
}

type InvoiceFilter struct {
	Status     *InvoiceStatus
	CustomerId *int
	From       *time.Time
	To         *time.Time
}

type InvoicesConnection struct {
	Edges    []*Invoice `json:"data"`
	PageInfo PageInfo   `json:"page_info"`
}

func ListInvoices(ctx context.Context, filter InvoiceFilter, after *string, limit int) (*InvoicesConnection, error) {
	afterId, err := DecodeCursor(after)
	if err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Invoice{}).Preload("Items")
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.CustomerId != nil {
		dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("date <= ?", *filter.To)
	}
	if afterId > 0 {
		dbCtx = dbCtx.Where("id > ?", afterId)
	}
	var rows []*Invoice
	if err := dbCtx.Order("id").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	edges, info := pageOf(rows, limit, func(inv *Invoice) int { return inv.ID })
	return &InvoicesConnection{Edges: edges, PageInfo: info}, nil
}
