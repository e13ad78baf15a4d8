package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartScenario(t *testing.T) {
	a := &Product{ID: 1, Name: "A", Price: 100}
	b := &Product{ID: 2, Name: "B", Price: 50}
	cart := &Cart{ID: 7, UserID: 1}

	cart.AddItem(a, 2)
	assert.Equal(t, int64(200), cart.TotalPrice)
	assert.Equal(t, int64(2), cart.TotalQuantity)

	cart.AddItem(b, 1)
	assert.Equal(t, int64(250), cart.TotalPrice)
	assert.Equal(t, int64(3), cart.TotalQuantity)

	changed, err := cart.SetQuantity(a.ID, 5)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(550), cart.TotalPrice)
	assert.Equal(t, int64(6), cart.TotalQuantity)

	require.NoError(t, cart.RemoveItem(b.ID))
	assert.Equal(t, int64(500), cart.TotalPrice)
	assert.Equal(t, int64(5), cart.TotalQuantity)
	assert.Len(t, cart.Items, 1)
}

func TestCartAddAccumulates(t *testing.T) {
	p := &Product{ID: 1, Price: 30}
	cart := &Cart{}

	assert.False(t, cart.AddItem(p, 1))
	assert.True(t, cart.AddItem(p, 2))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(3), cart.Items[0].Quantity)
	assert.Equal(t, int64(90), cart.TotalPrice)
}

func TestCartSetQuantityUnchanged(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(&Product{ID: 1, Price: 10}, 4)

	changed, err := cart.SetQuantity(1, 4)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(40), cart.TotalPrice)
}

func TestCartMissingLineItem(t *testing.T) {
	cart := &Cart{}

	_, err := cart.SetQuantity(9, 1)
	assert.ErrorIs(t, err, ErrLineItemNotFound)
	assert.ErrorIs(t, cart.RemoveItem(9), ErrLineItemNotFound)
}

func TestCartTotalsMatchLineItems(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []*Product{
		{ID: 1, Price: 100},
		{ID: 2, Price: 50},
		{ID: 3, Price: 1},
		{ID: 4, Price: 9999},
		{ID: 5, Price: 0},
	}

	for run := 0; run < 50; run++ {
		cart := &Cart{}
		for step := 0; step < 200; step++ {
			p := products[rng.Intn(len(products))]
			switch rng.Intn(3) {
			case 0:
				cart.AddItem(p, int64(rng.Intn(10)+1))
			case 1:
				_, _ = cart.SetQuantity(p.ID, int64(rng.Intn(10)+1))
			case 2:
				_ = cart.RemoveItem(p.ID)
			}

			var quantity, price int64
			for _, item := range cart.Items {
				quantity += item.Quantity
				price += item.Quantity * item.UnitPrice
			}
			require.Equal(t, quantity, cart.TotalQuantity)
			require.Equal(t, price, cart.TotalPrice)
		}
	}
}

func TestCartOrderItemsFreezePrice(t *testing.T) {
	p := &Product{ID: 1, Name: "Lamp", Price: 120}
	cart := &Cart{}
	cart.AddItem(p, 3)

	items := cart.OrderItems(11)
	p.Price = 999

	require.Len(t, items, 1)
	assert.Equal(t, int64(11), items[0].OrderID)
	assert.Equal(t, int64(120), items[0].UnitPrice)
	assert.Equal(t, "Lamp", items[0].ProductName)
	assert.Equal(t, int64(3), items[0].Quantity)
}
