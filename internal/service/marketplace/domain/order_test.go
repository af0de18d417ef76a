package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []LineItem {
	return []LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 3, Price: 2.5},
		{ProductID: "p2", ProductName: "Turmeric", Quantity: 2, Price: 10},
	}
}

func TestNewOrderComputesTotalOnce(t *testing.T) {
	order, err := NewOrder("o1", "vendor-1", "supplier-1", "12 Market Road", testItems())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.InDelta(t, 3*2.5+2*10, order.TotalAmount, 1e-9)

	// 之后修改行项目单价不会改变已固定的总价
	order.Items[0].Price = 100
	assert.InDelta(t, 27.5, order.TotalAmount, 1e-9)
}

func TestNewOrderValidation(t *testing.T) {
	testCases := []struct {
		name  string
		build func() (*Order, error)
	}{
		{"missing vendor", func() (*Order, error) {
			return NewOrder("o1", "", "supplier-1", "addr", testItems())
		}},
		{"missing supplier", func() (*Order, error) {
			return NewOrder("o1", "vendor-1", "", "addr", testItems())
		}},
		{"no items", func() (*Order, error) {
			return NewOrder("o1", "vendor-1", "supplier-1", "addr", nil)
		}},
		{"blank address", func() (*Order, error) {
			return NewOrder("o1", "vendor-1", "supplier-1", "", testItems())
		}},
		{"non-positive quantity", func() (*Order, error) {
			return NewOrder("o1", "vendor-1", "supplier-1", "addr", []LineItem{{ProductID: "p1", Quantity: 0, Price: 1}})
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestOrderTransitionTo(t *testing.T) {
	order, err := NewOrder("o1", "vendor-1", "supplier-1", "addr", testItems())
	require.NoError(t, err)

	require.NoError(t, order.TransitionTo(StatusProcessing))
	require.NoError(t, order.TransitionTo(StatusShipped))
	require.NoError(t, order.TransitionTo(StatusDelivered))

	err = order.TransitionTo(StatusCancelled)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, StatusDelivered, transitionErr.From)
	assert.Equal(t, StatusCancelled, transitionErr.To)
	// 失败的流转不改变状态
	assert.Equal(t, StatusDelivered, order.Status)
}

func TestOrderAccessibleBy(t *testing.T) {
	order, err := NewOrder("o1", "vendor-1", "supplier-1", "addr", testItems())
	require.NoError(t, err)

	assert.True(t, order.AccessibleBy(Identity{UserID: "vendor-1", Role: RoleVendor}))
	assert.True(t, order.AccessibleBy(Identity{UserID: "supplier-1", Role: RoleSupplier}))
	assert.True(t, order.AccessibleBy(Identity{UserID: "root", Role: RoleAdmin}))
	assert.False(t, order.AccessibleBy(Identity{UserID: "vendor-2", Role: RoleVendor}))
	assert.False(t, order.AccessibleBy(Identity{UserID: "supplier-2", Role: RoleSupplier}))
}
