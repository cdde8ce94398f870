package models

import (
	"log"

	"bitbucket.org/mmdatafocus/stock_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Category{}, &Customer{}, &DeliveryMethod{},
		&IdempotencyKey{}, &Invoice{}, &InvoiceItem{},
		&Product{}, &ProductVariant{}, &Purchase{},
		&Shelf{}, &StockDriftReport{}, &StockEventRecord{}, &StockMovement{}, &Supplier{},
		&User{},
		&Warehouse{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
