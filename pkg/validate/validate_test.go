package validate_test

import (
	"testing"

	"github.com/gmcandra/mebelshop/pkg/validate"
)

type registerInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"nullable,in=ADMIN,USER"`
}

type productInput struct {
	Name  string  `json:"name"  validate:"required,min=2,max=255"`
	Price float64 `json:"price" validate:"required,gt=0"`
	Stock int     `json:"stock" validate:"required,gte=0"`
	Image string  `json:"image" validate:"nullable,url"`
}

func TestValidRegisterInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Budi Santoso",
		Email:    "budi@example.com",
		Password: "rahasia123",
		Role:     "USER",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email to be required")
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name: "Budi", Email: "not-an-email", Password: "rahasia123",
	})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestInRuleKeepsMultiValueParams(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name: "Budi", Email: "budi@example.com", Password: "rahasia123",
		Role: "SUPERADMIN",
	})
	if _, ok := errs["role"]; !ok {
		t.Error("expected invalid role to fail")
	}
}

func TestNumericBounds(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Kursi Jati", Price: 0, Stock: 5})
	if _, ok := errs["price"]; !ok {
		t.Error("expected price <= 0 to fail gt=0")
	}

	errs = validate.Struct(productInput{Name: "Kursi Jati", Price: 450000, Stock: 5})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid product to pass, got: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Meja Makan", Price: 1200000, Stock: 3, Image: ""})
	if validate.HasErrors(errs) {
		t.Errorf("expected empty nullable image to pass: %v", errs)
	}

	errs = validate.Struct(productInput{Name: "Meja Makan", Price: 1200000, Stock: 3, Image: "not-a-url"})
	if _, ok := errs["image"]; !ok {
		t.Error("expected invalid URL to fail")
	}
}
