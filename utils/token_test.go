package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	issued, err := JwtGenerate(7, "stockAdmin", "ADMIN")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	if issued.TokenId == "" || !issued.ExpiresAt.After(time.Now()) {
		t.Fatalf("unexpected issued token %+v", issued)
	}

	claims, err := JwtValidate(issued.Token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if claims.ID != 7 || claims.Username != "stockAdmin" || claims.Role != "ADMIN" || claims.Id != issued.TokenId {
		t.Fatalf("unexpected claims %+v", claims)
	}

	t.Setenv("API_SECRET", "rotated")
	if _, err := JwtValidate(issued.Token); err == nil {
		t.Fatalf("expected a token signed with another secret to fail")
	}
}

func TestTokenLifespan(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "")
	if got := TokenLifespan(); got != 24*time.Hour {
		t.Fatalf("default lifespan: got %s", got)
	}
	t.Setenv("TOKEN_HOUR_LIFESPAN", "2")
	if got := TokenLifespan(); got != 2*time.Hour {
		t.Fatalf("env lifespan: got %s", got)
	}
	t.Setenv("TOKEN_HOUR_LIFESPAN", "-3")
	if got := TokenLifespan(); got != 24*time.Hour {
		t.Fatalf("negative lifespan should fall back: got %s", got)
	}
}

func TestComparePassword(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(string(hashed), "s3cret"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(string(hashed), "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestIsDuplicateKeyErr(t *testing.T) {
	if IsDuplicateKeyErr(nil) {
		t.Fatalf("nil is not a duplicate")
	}
	if !IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)) {
		t.Fatalf("wrapped gorm.ErrDuplicatedKey not detected")
	}
	if !IsDuplicateKeyErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Fatalf("mysql 1062 not detected")
	}
	if IsDuplicateKeyErr(&mysql.MySQLError{Number: 1213, Message: "Deadlock"}) {
		t.Fatalf("deadlock reported as duplicate")
	}
}
