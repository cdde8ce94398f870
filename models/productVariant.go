package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"github.com/shopspring/decimal"
)

// ProductVariant carries the cached stock counter. StockQuantity is written by
// adjustVariantStock inside the transaction that appends the matching movement, and
// otherwise only by RebuildVariantStock with apply set (the stock-rebuild -apply repair).
type ProductVariant struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ProductId     int             `gorm:"index;not null" json:"product_id"`
	Size          *string         `gorm:"size:50" json:"size"`
	Color         *string         `gorm:"size:50" json:"color"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purchase_price"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"selling_price"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v ProductVariant) Label() string {
	parts := make([]string, 0, 2)
	if v.Size != nil && *v.Size != "" {
		parts = append(parts, *v.Size)
	}
	if v.Color != nil && *v.Color != "" {
		parts = append(parts, *v.Color)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("#%d", v.ID)
	}
	return strings.Join(parts, " / ")
}

// no stock field: the counter only moves through the ledger
type NewProductVariant struct {
	ProductId     int             `json:"product_id" validate:"required,gt=0"`
	Size          *string         `json:"size" validate:"omitempty,max=50"`
	Color         *string         `json:"color" validate:"omitempty,max=50"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// ProductVariantListing adds the latest purchase price (0 when never purchased).
type ProductVariantListing struct {
	ProductVariant
	LatestPurchasePrice decimal.Decimal `json:"latest_purchase_price"`
}

func CreateProductVariant(ctx context.Context, input *NewProductVariant) (*ProductVariant, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.PurchasePrice.IsNegative() {
		return nil, newValidationError("purchase_price", "cannot be negative")
	}
	if input.SellingPrice.IsNegative() {
		return nil, newValidationError("selling_price", "cannot be negative")
	}
	if err := requireExists[Product](ctx, "product", input.ProductId); err != nil {
		return nil, err
	}
	return createModel(ctx, &ProductVariant{
		ProductId:     input.ProductId,
		Size:          input.Size,
		Color:         input.Color,
		StockQuantity: 0,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
	})
}

func GetProductVariant(ctx context.Context, id int) (*ProductVariant, error) {
	return fetchModel[ProductVariant](ctx, "product_variant", id)
}

func GetProductVariants(ctx context.Context, productId *int) ([]*ProductVariantListing, error) {
	db := config.GetDB()
	var variants []*ProductVariant
	dbCtx := db.WithContext(ctx).Model(&ProductVariant{})
	if productId != nil {
		dbCtx = dbCtx.Where("product_id = ?", *productId)
	}
	if err := dbCtx.Order("id").Find(&variants).Error; err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return []*ProductVariantListing{}, nil
	}

	ids := make([]int, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}
	latest, err := latestPurchasePrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]*ProductVariantListing, 0, len(variants))
	for _, v := range variants {
		price, ok := latest[v.ID]
		if !ok {
			price = decimal.Zero
		}
		results = append(results, &ProductVariantListing{ProductVariant: *v, LatestPurchasePrice: price})
	}
	return results, nil
}

// latestPurchasePrices maps variant id to the unit price of its most recent purchase.
func latestPurchasePrices(ctx context.Context, variantIds []int) (map[int]decimal.Decimal, error) {
	type row struct {
		VariantId     int
		PurchasePrice decimal.Decimal
	}
	var rows []row
	db := config.GetDB()
	latestIds := db.Model(&Purchase{}).
		Select("MAX(id)").
		Where("variant_id IN ?", variantIds).
		Group("variant_id")
	if err := db.WithContext(ctx).Model(&Purchase{}).
		Select("variant_id, purchase_price").
		Where("id IN (?)", latestIds).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.VariantId] = r.PurchasePrice
	}
	return out, nil
}
