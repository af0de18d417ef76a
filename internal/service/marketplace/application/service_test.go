package application

import (
	"context"
	"testing"

	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	store     *fakeStore
	cache     *recordingCache
	publisher *recordingPublisher
	service   *MarketplaceService
}

func newServiceFixture(t *testing.T, rules port.OrderRuleEngine) *serviceFixture {
	t.Helper()
	store := newFakeStore()
	cache := &recordingCache{}
	publisher := &recordingPublisher{}
	tracer := testTracer()
	reconciler := NewInventoryReconciler(store, rules, tracer)
	lifecycle := NewOrderLifecycleManager(store, reconciler, newFakeLocker(), publisher, tracer)
	service := NewMarketplaceService(store, reconciler, lifecycle, cache, publisher, tracer)
	return &serviceFixture{store: store, cache: cache, publisher: publisher, service: service}
}

var (
	vendor = domain.Identity{UserID: "vendor-1", Role: domain.RoleVendor}
	admin  = domain.Identity{UserID: "root", Role: domain.RoleAdmin}
)

func TestPlaceOrderRequiresVendorRole(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	req := &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: "addr",
	}

	for _, actor := range []domain.Identity{
		{UserID: "supplier-1", Role: domain.RoleSupplier},
		{UserID: "root", Role: domain.RoleAdmin},
	} {
		_, err := f.service.PlaceOrder(context.Background(), actor, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
	assert.Equal(t, 100, f.store.mustProduct(t, "p1").Stock)
}

func TestPlaceOrderPublishesEventAndInvalidatesCache(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	seedProduct(t, f.store, "p2", "Turmeric", 10, 50, "supplier-1")

	order, err := f.service.PlaceOrder(context.Background(), vendor, &PlaceOrderRequest{
		Products: []LineItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 2},
		},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{order.ID}, f.publisher.placed)
	assert.ElementsMatch(t, []string{"p1", "p2"}, f.cache.invalidated)
}

func TestPlaceOrderRuleRejectionLeavesNoTrace(t *testing.T) {
	rejectAll := ruleEngineFunc(func(context.Context, port.OrderFact) error {
		return &domain.ValidationError{Reason: "order rejected by rule"}
	})
	f := newServiceFixture(t, rejectAll)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")

	_, err := f.service.PlaceOrder(context.Background(), vendor, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 5}},
		ShippingAddress: "addr",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, 100, f.store.mustProduct(t, "p1").Stock)
	assert.Empty(t, f.publisher.placed)
	assert.Empty(t, f.cache.invalidated)
	orders, _ := f.store.Orders().List(context.Background())
	assert.Empty(t, orders)
}

func TestGetOrderEnforcesAccess(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	ctx := context.Background()

	order, err := f.service.PlaceOrder(ctx, vendor, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)

	for _, actor := range []domain.Identity{
		vendor,
		{UserID: "supplier-1", Role: domain.RoleSupplier},
		admin,
	} {
		got, err := f.service.GetOrder(ctx, order.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	}

	_, err = f.service.GetOrder(ctx, order.ID, domain.Identity{UserID: "vendor-2", Role: domain.RoleVendor})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.service.GetOrder(ctx, "ghost", vendor)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersByRole(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	seedProduct(t, f.store, "p2", "Paneer", 6, 100, "supplier-2")
	ctx := context.Background()

	vendor2 := domain.Identity{UserID: "vendor-2", Role: domain.RoleVendor}
	_, err := f.service.PlaceOrder(ctx, vendor, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 1}},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)
	_, err = f.service.PlaceOrder(ctx, vendor2, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p2", Quantity: 1}},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)

	all, err := f.service.ListOrders(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.service.ListOrders(ctx, vendor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "vendor-1", mine[0].VendorID)

	incoming, err := f.service.ListOrders(ctx, domain.Identity{UserID: "supplier-2", Role: domain.RoleSupplier})
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "supplier-2", incoming[0].SupplierID)
}

func TestUpdateOrderStatusInvalidatesCacheOnCancel(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	ctx := context.Background()

	order, err := f.service.PlaceOrder(ctx, vendor, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 4}},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)
	f.cache.invalidated = nil

	// 发货流转不动库存，缓存不需要失效
	_, err = f.service.UpdateOrderStatus(ctx, order.ID, "processing", supplier)
	require.NoError(t, err)
	assert.Empty(t, f.cache.invalidated)

	_, err = f.service.UpdateOrderStatus(ctx, order.ID, "cancelled", supplier)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, f.cache.invalidated)
	assert.Equal(t, 100, f.store.mustProduct(t, "p1").Stock)
}

func TestCreateProductRequiresSupplierRole(t *testing.T) {
	f := newServiceFixture(t, nil)
	req := &CreateProductRequest{Name: "Tomatoes", Price: 2.5, Stock: 10, Category: "vegetables"}

	_, err := f.service.CreateProduct(context.Background(), vendor, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	product, err := f.service.CreateProduct(context.Background(), supplier, req)
	require.NoError(t, err)
	assert.Equal(t, "supplier-1", product.SupplierID)
	assert.NotEmpty(t, product.ID)
}

func TestCreateProductValidatesCategory(t *testing.T) {
	f := newServiceFixture(t, nil)
	_, err := f.service.CreateProduct(context.Background(), supplier,
		&CreateProductRequest{Name: "Telly", Price: 300, Stock: 5, Category: "electronics"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProductOwnershipAndFields(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	ctx := context.Background()

	_, err := f.service.UpdateProduct(ctx, domain.Identity{UserID: "supplier-2", Role: domain.RoleSupplier},
		"p1", &UpdateProductRequest{Price: floatPtr(3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	name := "Roma Tomatoes"
	category := "others"
	updated, err := f.service.UpdateProduct(ctx, supplier, "p1", &UpdateProductRequest{
		Name:     &name,
		Price:    floatPtr(3),
		Category: &category,
	})
	require.NoError(t, err)
	assert.Equal(t, "Roma Tomatoes", updated.Name)
	assert.InDelta(t, 3, updated.Price, 1e-9)
	assert.Equal(t, domain.CategoryOthers, updated.Category)
	// 没动库存
	assert.Equal(t, 100, f.store.mustProduct(t, "p1").Stock)
	assert.Contains(t, f.cache.invalidated, "p1")

	_, err = f.service.UpdateProduct(ctx, supplier, "p1", &UpdateProductRequest{Price: floatPtr(-1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProductReplaysStockAsDelta(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	ctx := context.Background()

	updated, err := f.service.UpdateProduct(ctx, supplier, "p1", &UpdateProductRequest{Stock: intPtr(120)})
	require.NoError(t, err)
	assert.Equal(t, 120, updated.Stock)
	assert.Equal(t, 120, f.store.mustProduct(t, "p1").Stock)

	updated, err = f.service.UpdateProduct(ctx, supplier, "p1", &UpdateProductRequest{Stock: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, 10, f.store.mustProduct(t, "p1").Stock)

	_, err = f.service.UpdateProduct(ctx, supplier, "p1", &UpdateProductRequest{Stock: intPtr(-5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 10, f.store.mustProduct(t, "p1").Stock)
}

func TestDeleteProductOwnerOrAdmin(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	seedProduct(t, f.store, "p2", "Turmeric", 10, 50, "supplier-1")
	ctx := context.Background()

	err := f.service.DeleteProduct(ctx, domain.Identity{UserID: "supplier-2", Role: domain.RoleSupplier}, "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.service.DeleteProduct(ctx, supplier, "p1"))
	require.NoError(t, f.service.DeleteProduct(ctx, admin, "p2"))

	err = f.service.DeleteProduct(ctx, admin, "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletedProductDoesNotAffectExistingOrders(t *testing.T) {
	f := newServiceFixture(t, nil)
	seedProduct(t, f.store, "p1", "Tomatoes", 2.5, 100, "supplier-1")
	ctx := context.Background()

	order, err := f.service.PlaceOrder(ctx, vendor, &PlaceOrderRequest{
		Products:        []LineItemRequest{{ProductID: "p1", Quantity: 2}},
		ShippingAddress: "addr",
	})
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteProduct(ctx, supplier, "p1"))

	// 订单行保留名称与价格快照
	got, err := f.service.GetOrder(ctx, order.ID, vendor)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tomatoes", got.Items[0].ProductName)
	assert.InDelta(t, 2.5, got.Items[0].Price, 1e-9)
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
