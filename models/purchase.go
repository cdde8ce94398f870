package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type Purchase struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SupplierId     int             `gorm:"index;not null" json:"supplier_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	VariantId      *int            `gorm:"index" json:"variant_id"`
	WarehouseId    *int            `gorm:"index" json:"warehouse_id"`
	ShelfId        *int            `gorm:"index" json:"shelf_id"`
	BatchNumber    string          `gorm:"size:100" json:"batch_number"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"purchase_price"`
	Total          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	PurchaseDate   time.Time       `gorm:"not null;index" json:"purchase_date"`
	IdempotencyKey *string         `gorm:"size:255;uniqueIndex" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchase struct {
	SupplierId     int             `json:"supplier_id" validate:"required,gt=0"`
	ProductId      int             `json:"product_id" validate:"required,gt=0"`
	VariantId      *int            `json:"variant_id" validate:"omitempty,gt=0"`
	WarehouseId    *int            `json:"warehouse_id" validate:"omitempty,gt=0"`
	ShelfId        *int            `json:"shelf_id" validate:"omitempty,gt=0"`
	BatchNumber    string          `json:"batch_number" validate:"max=100"`
	Quantity       int64           `json:"quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	PurchaseDate   *time.Time      `json:"purchase_date"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=255"`
}

// PurchaseTotal is quantity x unit price, rounded once to the persisted scale.
func PurchaseTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(quantity).Mul(unitPrice).Round(config.MoneyScale())
}

// validate checks the input shape only; foreign keys are checked by validateReferences.
func (input *NewPurchase) validate() error {
	if input.Quantity <= 0 {
		return newValidationError("quantity", "Quantity must be greater than 0.")
	}
	if input.PurchasePrice.IsNegative() {
		return newValidationError("purchase_price", "Purchase price cannot be negative.")
	}
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	return validateInput(input)
}

func (input *NewPurchase) validateReferences(ctx context.Context) error {
	if err := requireExists[Supplier](ctx, "supplier", input.SupplierId); err != nil {
		return err
	}
	if err := requireExists[Product](ctx, "product", input.ProductId); err != nil {
		return err
	}
	if err := requireExistsOptional[ProductVariant](ctx, "product_variant", input.VariantId); err != nil {
		return err
	}
	return validateLocation(ctx, input.WarehouseId, input.ShelfId)
}

// recordPurchaseTx persists the purchase, its single IN movement and the counter
// increment inside tx. The (purchase_id, movement_type) unique index rejects a second IN.
func recordPurchaseTx(tx *gorm.DB, input *NewPurchase, variants map[int]*ProductVariant) (*Purchase, error) {
	var variant *ProductVariant
	if input.VariantId != nil {
		variant = variants[*input.VariantId]
		if variant == nil {
			return nil, &NotFoundError{Resource: "product_variant", Id: *input.VariantId}
		}
		if variant.ProductId != input.ProductId {
			return nil, newValidationError("variant_id", "variant %d does not belong to product %d", variant.ID, input.ProductId)
		}
	}

	purchaseDate := time.Now().UTC()
	if input.PurchaseDate != nil {
		purchaseDate = *input.PurchaseDate
	}
	purchase := Purchase{
		SupplierId:    input.SupplierId,
		ProductId:     input.ProductId,
		VariantId:     input.VariantId,
		WarehouseId:   input.WarehouseId,
		ShelfId:       input.ShelfId,
		BatchNumber:   input.BatchNumber,
		Quantity:      input.Quantity,
		PurchasePrice: input.PurchasePrice,
		Total:         PurchaseTotal(input.Quantity, input.PurchasePrice),
		PurchaseDate:  purchaseDate,
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		purchase.IdempotencyKey = &key
	}
	if err := tx.Create(&purchase).Error; err != nil {
		return nil, err
	}

	if err := AppendStockMovement(tx, &StockMovement{
		MovementType: MovementTypeIn,
		Reason:       MovementReasonPurchase,
		Quantity:     purchase.Quantity,
		ProductId:    purchase.ProductId,
		VariantId:    purchase.VariantId,
		WarehouseId:  purchase.WarehouseId,
		ShelfId:      purchase.ShelfId,
		PurchaseId:   &purchase.ID,
		MovementDate: purchase.PurchaseDate,
	}); err != nil {
		return nil, err
	}

	if variant != nil {
		if err := adjustVariantStock(tx, variant, purchase.Quantity); err != nil {
			return nil, err
		}
	}
	return &purchase, nil
}

func findPurchaseByIdempotencyKey(ctx context.Context, key string) (*Purchase, error) {
	db := config.GetDB()
	var purchase Purchase
	err := db.WithContext(ctx).Where("idempotency_key = ?", key).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// RecordPurchase stores one supplier receipt. With an idempotency key a repeated call
// returns the purchase recorded first and replayed is true; nothing new is appended.
func RecordPurchase(ctx context.Context, input *NewPurchase) (purchase *Purchase, replayed bool, err error) {
	ctx, span := startSpan(ctx, "RecordPurchase", attribute.Int("product_id", input.ProductId))
	defer func() { endSpan(span, err) }()

	if err := input.validate(); err != nil {
		return nil, false, err
	}
	if input.IdempotencyKey != "" {
		existing, err := findPurchaseByIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}
	if err := input.validateReferences(ctx); err != nil {
		return nil, false, err
	}

	variantIds := variantIdsOf([]*NewPurchase{input}, func(p *NewPurchase) *int { return p.VariantId })
	release := utils.ObtainStockLocks(ctx, variantIds, "purchase.go", "RecordPurchase")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants, err := lockVariants(tx, variantIds)
		if err != nil {
			return err
		}
		purchase, err = recordPurchaseTx(tx, input, variants)
		return err
	})
	if err != nil {
		// lost a race on the same key: the winner's row is the answer
		if input.IdempotencyKey != "" && utils.IsDuplicateKeyErr(err) {
			existing, findErr := findPurchaseByIdempotencyKey(ctx, input.IdempotencyKey)
			if findErr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	return purchase, false, nil
}

// BulkRecordPurchases records every input in one transaction; any failure rolls all of them back.
func BulkRecordPurchases(ctx context.Context, inputs []*NewPurchase) (results []*Purchase, err error) {
	ctx, span := startSpan(ctx, "BulkRecordPurchases", attribute.Int("count", len(inputs)))
	defer func() { endSpan(span, err) }()

	if len(inputs) == 0 {
		return nil, newValidationError("purchases", "At least one purchase is required.")
	}
	seenKeys := make(map[string]bool)
	for i, input := range inputs {
		if err := input.validate(); err != nil {
			return nil, prefixValidation(err, "purchases", i)
		}
		if input.IdempotencyKey != "" {
			if seenKeys[input.IdempotencyKey] {
				return nil, newValidationError("purchases", "row %d repeats idempotency key %q", i+1, input.IdempotencyKey)
			}
			seenKeys[input.IdempotencyKey] = true
		}
		if err := input.validateReferences(ctx); err != nil {
			return nil, prefixValidation(err, "purchases", i)
		}
	}

	variantIds := variantIdsOf(inputs, func(p *NewPurchase) *int { return p.VariantId })
	release := utils.ObtainStockLocks(ctx, variantIds, "purchase.go", "BulkRecordPurchases")
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants, err := lockVariants(tx, variantIds)
		if err != nil {
			return err
		}
		results = make([]*Purchase, 0, len(inputs))
		for _, input := range inputs {
			purchase, err := recordPurchaseTx(tx, input, variants)
			if err != nil {
				return err
			}
			results = append(results, purchase)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// prefixValidation points a row-level validation error at its row.
func prefixValidation(err error, collection string, index int) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		field := fmt.Sprintf("%s[%d]", collection, index)
		if vErr.Field != "" {
			field += "." + vErr.Field
		}
		return &ValidationError{Field: field, Message: vErr.Message}
	}
	return err
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return fetchModel[Purchase](ctx, "purchase", id)
}

type PurchaseFilter struct {
	SupplierId *int
	ProductId  *int
	VariantId  *int
	From       *time.Time
	To         *time.Time
}

type PurchasesConnection struct {
	Edges    []*Purchase `json:"data"`
	PageInfo PageInfo    `json:"page_info"`
}

func ListPurchases(ctx context.Context, filter PurchaseFilter, after *string, limit int) (*PurchasesConnection, error) {
	afterId, err := DecodeCursor(after)
	if err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Purchase{})
	if filter.SupplierId != nil {
		dbCtx = dbCtx.Where("supplier_id = ?", *filter.SupplierId)
	}
	if filter.ProductId != nil {
		dbCtx = dbCtx.Where("product_id = ?", *filter.ProductId)
	}
	if filter.VariantId != nil {
		dbCtx = dbCtx.Where("variant_id = ?", *filter.VariantId)
	}
	if filter.From != nil {
		dbCtx = dbCtx.Where("purchase_date >= ?", *filter.From)
	}
	if filter.To != nil {
		dbCtx = dbCtx.Where("purchase_date <= ?", *filter.To)
	}
	if afterId > 0 {
		dbCtx = dbCtx.Where("id > ?", afterId)
	}
	var rows []*Purchase
	if err := dbCtx.Order("id").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	edges, info := pageOf(rows, limit, func(p *Purchase) int { return p.ID })
	return &PurchasesConnection{Edges: edges, PageInfo: info}, nil
}
