package application

import (
	"context"
	"sync"
	"testing"

	"mandi/internal/service/marketplace/domain"
	"mandi/internal/service/marketplace/port"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

// fakeStore 是 domain.Store 的内存实现，模拟数据库的事务语义:
// Transaction 串行执行，失败时恢复进入事务前的快照。
type fakeStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	products map[string]*domain.Product
	orders   map[string]*domain.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
}

func (s *fakeStore) Products() domain.ProductRepository { return &fakeProducts{s: s} }

func (s *fakeStore) Orders() domain.OrderRepository { return &fakeOrders{s: s} }

func (s *fakeStore) Transaction(_ context.Context, fn func(tx domain.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	productsSnapshot := make(map[string]*domain.Product, len(s.products))
	for id, p := range s.products {
		productsSnapshot[id] = copyProduct(p)
	}
	ordersSnapshot := make(map[string]*domain.Order, len(s.orders))
	for id, o := range s.orders {
		ordersSnapshot[id] = copyOrder(o)
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.products = productsSnapshot
		s.orders = ordersSnapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeStore) mustProduct(t *testing.T, id string) *domain.Product {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	require.Truef(t, ok, "product %s not found", id)
	return copyProduct(product)
}

func (s *fakeStore) mustOrder(t *testing.T, id string) *domain.Order {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	require.Truef(t, ok, "order %s not found", id)
	return copyOrder(order)
}

func copyProduct(p *domain.Product) *domain.Product {
	clone := *p
	return &clone
}

func copyOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.LineItem(nil), o.Items...)
	return &clone
}

type fakeProducts struct {
	s *fakeStore
}

func (r *fakeProducts) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.products[product.ID]; exists {
		return &domain.ValidationError{Reason: "product already exists: " + product.ID}
	}
	r.s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *fakeProducts) Save(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.products[product.ID]
	if !ok {
		return &domain.NotFoundError{Resource: "product", ID: product.ID}
	}
	clone := copyProduct(product)
	clone.Stock = existing.Stock // 库存只通过原子原语变更
	r.s.products[product.ID] = clone
	return nil
}

func (r *fakeProducts) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	}
	return copyProduct(product), nil
}

func (r *fakeProducts) List(_ context.Context) ([]*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Product, 0, len(r.s.products))
	for _, product := range r.s.products {
		result = append(result, copyProduct(product))
	}
	return result, nil
}

func (r *fakeProducts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	delete(r.s.products, id)
	return nil
}

func (r *fakeProducts) DecrementStock(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	if product.Stock < quantity {
		return domain.ErrInsufficientStock
	}
	product.Stock -= quantity
	return nil
}

func (r *fakeProducts) IncrementStock(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// 商品可能已被下架，回补变成 no-op
	if product, ok := r.s.products[id]; ok {
		product.Stock += quantity
	}
	return nil
}

type fakeOrders struct {
	s *fakeStore
}

func (r *fakeOrders) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.orders[order.ID]; exists {
		return &domain.ValidationError{Reason: "order already exists: " + order.ID}
	}
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrders) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "order", ID: id}
	}
	return copyOrder(order), nil
}

func (r *fakeOrders) List(_ context.Context) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Order, 0, len(r.s.orders))
	for _, order := range r.s.orders {
		result = append(result, copyOrder(order))
	}
	return result, nil
}

func (r *fakeOrders) ListByVendor(ctx context.Context, vendorID string) ([]*domain.Order, error) {
	all, _ := r.List(ctx)
	result := all[:0]
	for _, order := range all {
		if order.VendorID == vendorID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeOrders) ListBySupplier(ctx context.Context, supplierID string) ([]*domain.Order, error) {
	all, _ := r.List(ctx)
	result := all[:0]
	for _, order := range all {
		if order.SupplierID == supplierID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeOrders) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return &domain.NotFoundError{Resource: "order", ID: id}
	}
	delete(r.s.orders, id)
	return nil
}

func (r *fakeOrders) UpdateStatus(_ context.Context, id string, from, to domain.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return &domain.NotFoundError{Resource: "order", ID: id}
	}
	if order.Status != from {
		return &domain.InvalidTransitionError{From: order.Status, To: to}
	}
	order.Status = to
	return nil
}

// fakeLocker 记录加锁次数，锁本身用进程内互斥实现。
type fakeLocker struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	lockCount int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *fakeLocker) Lock(_ context.Context, key string) (func() error, error) {
	l.mu.Lock()
	keyLock, ok := l.locks[key]
	if !ok {
		keyLock = &sync.Mutex{}
		l.locks[key] = keyLock
	}
	l.lockCount++
	l.mu.Unlock()

	keyLock.Lock()
	return func() error {
		keyLock.Unlock()
		return nil
	}, nil
}

// recordingPublisher 记录发布的事件类型，供断言使用。
type recordingPublisher struct {
	mu     sync.Mutex
	placed []string
	status []string
	delete []string
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order *domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, order.ID)
	return nil
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, order *domain.Order, _ domain.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = append(p.status, order.ID)
	return nil
}

func (p *recordingPublisher) PublishOrderDeleted(_ context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delete = append(p.delete, orderID)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// recordingCache 记录失效调用，读路径直接回源。
type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) GetOrLoad(ctx context.Context, _ string, loader func(ctx context.Context) (*domain.Product, error)) (*domain.Product, error) {
	return loader(ctx)
}

func (c *recordingCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	return nil
}

// ruleEngineFunc 把一个函数适配成规则引擎端口。
type ruleEngineFunc func(ctx context.Context, fact port.OrderFact) error

func (f ruleEngineFunc) Evaluate(ctx context.Context, fact port.OrderFact) error {
	return f(ctx, fact)
}

func seedProduct(t *testing.T, store *fakeStore, id, name string, price float64, stock int, supplierID string) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct(id, name, "", price, stock, domain.CategoryVegetables, supplierID)
	require.NoError(t, err)
	require.NoError(t, store.Products().Create(context.Background(), product))
	return product
}
