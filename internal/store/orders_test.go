package store

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckoutSuccess(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 5, "Dairy")

	if err := s.AddOrIncrement(userID, productID, 2); err != nil {
		t.Fatal(err)
	}

	orderID, err := s.CreateOrderFromCart(userID, []int{productID})
	if err != nil {
		t.Fatalf("CreateOrderFromCart: %v", err)
	}

	if got := stockOf(t, s, productID); got != 3 {
		t.Errorf("stock after checkout = %d, want 3", got)
	}

	order, err := s.OrderForUser(orderID, userID)
	if err != nil {
		t.Fatalf("OrderForUser: %v", err)
	}
	if order.TotalAmount != 20.00 {
		t.Errorf("total = %v, want 20.00", order.TotalAmount)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items = %+v, want exactly one", order.Items)
	}
	if it := order.Items[0]; it.ProductID != productID || it.Quantity != 2 || it.Price != 10.00 {
		t.Errorf("item = %+v, want product %d qty 2 price 10.00", it, productID)
	}

	// The checked-out line is gone from the cart.
	items, _ := s.CartItems(userID)
	if len(items) != 0 {
		t.Errorf("cart after checkout = %+v, want empty", items)
	}
}

func TestCheckoutAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	a := seedProduct(t, s, "Apples", 3.00, 5, "Produce")
	b := seedProduct(t, s, "Bananas", 2.00, 2, "Produce")

	if err := s.AddOrIncrement(userID, a, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(userID, b, 2); err != nil {
		t.Fatal(err)
	}
	// Stock of B drains to zero after the line was added.
	if _, err := s.DB.Exec(`UPDATE products SET quantity = 0 WHERE id = ?`, b); err != nil {
		t.Fatal(err)
	}

	_, err := s.CreateOrderFromCart(userID, []int{a, b})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Product != "Bananas" {
		t.Errorf("error = %v, want it to name Bananas", err)
	}

	// Nothing persisted: no orders, no order items, stock and cart untouched.
	if n := countRows(t, s, "orders"); n != 0 {
		t.Errorf("orders rows = %d, want 0", n)
	}
	if n := countRows(t, s, "order_items"); n != 0 {
		t.Errorf("order_items rows = %d, want 0", n)
	}
	if got := stockOf(t, s, a); got != 5 {
		t.Errorf("stock of A = %d, want untouched 5", got)
	}
	items, _ := s.CartItems(userID)
	if len(items) != 2 {
		t.Errorf("cart = %+v, want both lines retained", items)
	}
}

func TestCheckoutGuardedDecrementRace(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice", "user")
	bob := seedUser(t, s, "bob", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 3, "Dairy")

	if err := s.AddOrIncrement(alice, productID, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(bob, productID, 2); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateOrderFromCart(alice, []int{productID}); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	// Bob's pre-checked line now exceeds the remaining stock; the
	// checkout must fail and leave his cart alone.
	_, err := s.CreateOrderFromCart(bob, []int{productID})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("second checkout: got %v, want ErrInsufficientStock", err)
	}
	if got := stockOf(t, s, productID); got != 1 {
		t.Errorf("stock = %d, want 1", got)
	}
	items, _ := s.CartItems(bob)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("bob's cart = %+v, want untouched line", items)
	}
}

func TestCheckoutSelectionAndEmptyCart(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 5, "Dairy")

	if _, err := s.CreateOrderFromCart(userID, nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("nil selection: got %v, want ErrEmptySelection", err)
	}
	// Selecting a product that is not in the cart behaves like an empty cart.
	if _, err := s.CreateOrderFromCart(userID, []int{productID}); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("no matching lines: got %v, want ErrEmptyCart", err)
	}
}

func TestCheckoutLeavesUnselectedLines(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	a := seedProduct(t, s, "Apples", 3.00, 5, "Produce")
	b := seedProduct(t, s, "Bananas", 2.00, 5, "Produce")

	if err := s.AddOrIncrement(userID, a, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(userID, b, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := s.CreateOrderFromCart(userID, []int{a}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	items, _ := s.CartItems(userID)
	if len(items) != 1 || items[0].ProductID != b {
		t.Fatalf("cart = %+v, want only the unselected line", items)
	}
}

func TestOrderSnapshotSurvivesPriceEdit(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 5, "Dairy")

	if err := s.AddOrIncrement(userID, productID, 2); err != nil {
		t.Fatal(err)
	}
	orderID, err := s.CreateOrderFromCart(userID, []int{productID})
	if err != nil {
		t.Fatal(err)
	}

	p, _ := s.ProductByID(productID)
	p.Price = 99.99
	if err := s.UpdateProduct(p); err != nil {
		t.Fatal(err)
	}

	order, err := s.OrderForUser(orderID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if order.TotalAmount != 20.00 || order.Items[0].Price != 10.00 {
		t.Errorf("order total %v / item price %v changed after product price edit",
			order.TotalAmount, order.Items[0].Price)
	}
}

func TestOrderForUserOwnership(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice", "user")
	bob := seedUser(t, s, "bob", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 5, "Dairy")

	if err := s.AddOrIncrement(alice, productID, 1); err != nil {
		t.Fatal(err)
	}
	orderID, err := s.CreateOrderFromCart(alice, []int{productID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.OrderForUser(orderID, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign order fetch: got %v, want ErrNotFound", err)
	}
}

func TestReviewUpsert(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	productID := seedProduct(t, s, "Milk", 10.00, 5, "Dairy")

	if err := s.AddOrIncrement(userID, productID, 1); err != nil {
		t.Fatal(err)
	}
	orderID, err := s.CreateOrderFromCart(userID, []int{productID})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddOrUpdateReview(orderID, productID, userID, 3, "okay"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if err := s.AddOrUpdateReview(orderID, productID, userID, 5, "actually great"); err != nil {
		t.Fatalf("second review: %v", err)
	}

	reviews, err := s.ReviewsForOrder(orderID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reviews) != 1 {
		t.Fatalf("reviews = %+v, want exactly one row", reviews)
	}
	if reviews[0].Rating != 5 || reviews[0].Comment != "actually great" {
		t.Errorf("review = %+v, want the second submission to win", reviews[0])
	}
}

func TestOrdersByUserGrouping(t *testing.T) {
	s := newTestStore(t)
	userID := seedUser(t, s, "alice", "user")
	a := seedProduct(t, s, "Apples", 3.00, 10, "Produce")
	b := seedProduct(t, s, "Bananas", 2.00, 10, "Produce")

	if err := s.AddOrIncrement(userID, a, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(userID, b, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateOrderFromCart(userID, []int{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddOrIncrement(userID, a, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateOrderFromCart(userID, []int{a}); err != nil {
		t.Fatal(err)
	}

	orders, err := s.OrdersByUser(userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(orders))
	}
	var itemCounts []int
	for _, o := range orders {
		itemCounts = append(itemCounts, len(o.Items))
	}
	if itemCounts[0]+itemCounts[1] != 3 {
		t.Errorf("item counts = %v, want 3 lines across both orders", itemCounts)
	}
}

func TestDashboardStats(t *testing.T) {
	s := newTestStore(t)
	alice := seedUser(t, s, "alice", "user")
	seedUser(t, s, "admin", "admin")
	milk := seedProduct(t, s, "Milk", 10.00, 20, "Dairy")
	seedProduct(t, s, "Bread", 1.80, 20, "Bakery")

	for i := 0; i < 6; i++ {
		if err := s.AddOrIncrement(alice, milk, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CreateOrderFromCart(alice, []int{milk}); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.DashboardStats()
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.InventoryCount != 2 {
		t.Errorf("InventoryCount = %d, want 2", stats.InventoryCount)
	}
	if stats.UserCount != 2 {
		t.Errorf("UserCount = %d, want 2", stats.UserCount)
	}
	if stats.OrderCount != 6 {
		t.Errorf("OrderCount = %d, want 6", stats.OrderCount)
	}
	if stats.Revenue != 60.00 {
		t.Errorf("Revenue = %v, want 60.00", stats.Revenue)
	}
	if len(stats.RecentOrders) != 5 {
		t.Errorf("RecentOrders = %d, want capped at 5", len(stats.RecentOrders))
	}
	for _, o := range stats.RecentOrders {
		if o.Username != "alice" {
			t.Errorf("recent order %d username = %q, want alice", o.ID, o.Username)
		}
	}
}

func TestStockNeverNegative(t *testing.T) {
	s := newTestStore(t)
	var orderUsers []int
	productID := seedProduct(t, s, "Milk", 10.00, 7, "Dairy")

	// Several users each try to take 3; only two checkouts can succeed.
	for _, name := range []string{"u1", "u2", "u3", "u4"} {
		id := seedUser(t, s, name, "user")
		orderUsers = append(orderUsers, id)
		if err := s.AddOrIncrement(id, productID, 3); err != nil {
			// Later carts may already exceed remaining stock; that is fine,
			// the point is the floor on the stock column.
			continue
		}
	}

	succeeded := 0
	for _, id := range orderUsers {
		if _, err := s.CreateOrderFromCart(id, []int{productID}); err == nil {
			succeeded++
		}
	}

	if succeeded != 2 {
		t.Errorf("successful checkouts = %d, want 2", succeeded)
	}
	if got := stockOf(t, s, productID); got < 0 {
		t.Fatalf("stock = %d, must never go negative", got)
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{Product: "Milk"}
	if !strings.Contains(err.Error(), "Milk") {
		t.Errorf("message %q should name the product", err.Error())
	}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("InsufficientStockError should match ErrInsufficientStock")
	}
}
