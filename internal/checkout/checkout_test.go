package checkout

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/order"
	"storefront/internal/state"
)

func validForm() Form {
	return Form{
		FullName:      "Nguyễn Văn A",
		Phone:         "0912345678",
		Email:         "a@example.com",
		Address:       "12 Lê Lợi",
		City:          "Hồ Chí Minh",
		CityCode:      79,
		District:      "Quận 1",
		DistrictCode:  760,
		Ward:          "Bến Nghé",
		WardCode:      26734,
		PaymentMethod: "cod",
	}
}

func TestValidate_AcceptsValidForm(t *testing.T) {
	if errs := validForm().Validate(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
		field  string
	}{
		{"missing name", func(f *Form) { f.FullName = "" }, "full_name"},
		{"short name", func(f *Form) { f.FullName = "A" }, "full_name"},
		{"missing phone", func(f *Form) { f.Phone = "" }, "phone"},
		{"bad phone prefix", func(f *Form) { f.Phone = "0123456789" }, "phone"},
		{"short phone", func(f *Form) { f.Phone = "091234567" }, "phone"},
		{"long phone", func(f *Form) { f.Phone = "09123456789" }, "phone"},
		{"bad email", func(f *Form) { f.Email = "not-an-email" }, "email"},
		{"missing city", func(f *Form) { f.City = ""; f.CityCode = 0 }, "city"},
		{"city name without code", func(f *Form) { f.CityCode = 0 }, "city"},
		{"missing district", func(f *Form) { f.District = ""; f.DistrictCode = 0 }, "district"},
		{"missing ward", func(f *Form) { f.Ward = ""; f.WardCode = 0 }, "ward"},
		{"missing address", func(f *Form) { f.Address = "" }, "address"},
		{"short address", func(f *Form) { f.Address = "xy" }, "address"},
		{"bad payment", func(f *Form) { f.PaymentMethod = "paypal" }, "payment_method"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := validForm()
			c.mutate(&f)
			errs := f.Validate()
			if _, ok := errs[c.field]; !ok {
				t.Fatalf("expected error on %q, got %v", c.field, errs)
			}
		})
	}
}

func TestValidate_EmailOptional(t *testing.T) {
	f := validForm()
	f.Email = ""
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("empty email must be allowed: %v", errs)
	}
}

func TestComposedAddress(t *testing.T) {
	got := validForm().ComposedAddress()
	want := "12 Lê Lợi, Bến Nghé, Quận 1, Hồ Chí Minh"
	if got != want {
		t.Fatalf("address=%q want=%q", got, want)
	}
}

func newTestService() (*Service, *cart.Store, *order.Store) {
	m := state.NewMemMedium()
	c := cart.NewStore(m, zap.NewNop())
	o := order.NewStore(m, zap.NewNop())
	return &Service{Cart: c, Orders: o, Log: zap.NewNop()}, c, o
}

func TestSubmit_RejectsEmptyCart(t *testing.T) {
	s, _, _ := newTestService()

	if _, err := s.Submit(context.Background(), "u_test", validForm()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err=%v want ErrEmptyCart", err)
	}
}

func TestSubmit_RejectsInvalidFormBeforeCreating(t *testing.T) {
	s, c, o := newTestService()
	ctx := context.Background()

	if _, err := c.Add(ctx, "u_test", cart.Line{Key: cart.Key{ProductID: 1}, UnitPrice: 1000, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	bad := validForm()
	bad.Phone = "123"

	_, err := s.Submit(ctx, "u_test", bad)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err=%v want ValidationError", err)
	}
	if _, ok := ve.Fields["phone"]; !ok {
		t.Fatalf("fields=%v", ve.Fields)
	}

	orders, err := o.List(ctx, "u_test", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("order created despite invalid form")
	}
}

func TestSubmit_CreatesOrderAndClearsCart(t *testing.T) {
	s, c, ord := newTestService()
	ctx := context.Background()

	if _, err := c.Add(ctx, "u_test", cart.Line{Key: cart.Key{ProductID: 1}, Name: "p", UnitPrice: 120000, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	o, err := s.Submit(ctx, "u_test", validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if o.Status != order.StatusPending {
		t.Fatalf("status=%s", o.Status)
	}
	if o.TotalAmount != 240000 {
		t.Fatalf("total=%d", o.TotalAmount)
	}
	if o.Customer.Address != "12 Lê Lợi, Bến Nghé, Quận 1, Hồ Chí Minh" {
		t.Fatalf("address=%q", o.Customer.Address)
	}

	lines, err := c.Lines(ctx, "u_test")
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("cart not cleared after checkout")
	}

	// The order keeps its snapshot even though the cart is gone.
	got, found, err := ord.Get(ctx, "u_test", o.ID)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("items=%v", got.Items)
	}
}
