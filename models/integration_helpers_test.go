package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/shopspring/decimal"
)

// startIntegrationEnv boots MySQL + Redis in docker, connects the globals and migrates.
func startIntegrationEnv(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "stock_test")
	t.Setenv("INVOICE_STATUS_STOCK_POLICY", "lenient")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetCorrelationIdInContext(ctx, fmt.Sprintf("it-%d", time.Now().UnixNano()))
	return ctx
}

type stockFixture struct {
	supplier *models.Supplier
	customer *models.Customer
	product  *models.Product
	variant  *models.ProductVariant
}

func newStockFixture(t *testing.T, ctx context.Context) stockFixture {
	t.Helper()
	category, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Shirts"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Acme Textiles"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{FirstName: "Dara"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	product, err := models.CreateProduct(ctx, &models.NewProduct{Name: "Polo", CategoryId: category.ID})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	size := "M"
	variant, err := models.CreateProductVariant(ctx, &models.NewProductVariant{
		ProductId:    product.ID,
		Size:         &size,
		SellingPrice: decimal.NewFromInt(12),
	})
	if err != nil {
		t.Fatalf("CreateProductVariant: %v", err)
	}
	if variant.StockQuantity != 0 {
		t.Fatalf("new variant must start at 0, got %d", variant.StockQuantity)
	}
	return stockFixture{supplier: supplier, customer: customer, product: product, variant: variant}
}

func (f stockFixture) purchase(t *testing.T, ctx context.Context, qty int64, key string) *models.Purchase {
	t.Helper()
	variantId := f.variant.ID
	p, _, err := models.RecordPurchase(ctx, &models.NewPurchase{
		SupplierId:     f.supplier.ID,
		ProductId:      f.product.ID,
		VariantId:      &variantId,
		Quantity:       qty,
		PurchasePrice:  decimal.RequireFromString("3.5"),
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	return p
}

func (f stockFixture) invoiceInput(status models.InvoiceStatus, quantities ...int64) *models.NewInvoice {
	variantId := f.variant.ID
	input := &models.NewInvoice{CustomerId: f.customer.ID, Status: status}
	for _, qty := range quantities {
		input.Items = append(input.Items, models.NewInvoiceItem{
			ProductId: f.product.ID,
			VariantId: &variantId,
			Quantity:  qty,
			UnitPrice: decimal.NewFromInt(12),
		})
	}
	return input
}

// assertStock checks the cached counter and the ledger projection agree on want.
func (f stockFixture) assertStock(t *testing.T, ctx context.Context, want int64) {
	t.Helper()
	v, err := models.GetProductVariant(ctx, f.variant.ID)
	if err != nil {
		t.Fatalf("GetProductVariant: %v", err)
	}
	if v.StockQuantity != want {
		t.Fatalf("expected cached stock %d, got %d", want, v.StockQuantity)
	}
	variantId := f.variant.ID
	projected, err := models.CurrentStock(ctx, f.product.ID, &variantId, nil, nil)
	if err != nil {
		t.Fatalf("CurrentStock: %v", err)
	}
	if projected != want {
		t.Fatalf("expected projected stock %d, got %d", want, projected)
	}
}

func collectMovements(t *testing.T, ctx context.Context, filter models.StockMovementFilter) []*models.StockMovement {
	t.Helper()
	rows, err := models.NewStockMovementQuery(config.GetDB(), filter).Collect(ctx)
	if err != nil {
		t.Fatalf("Collect movements: %v", err)
	}
	return rows
}

func countMovements(t *testing.T, ctx context.Context, filter models.StockMovementFilter) int {
	t.Helper()
	return len(collectMovements(t, ctx, filter))
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("stock-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("stock-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=stock_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
