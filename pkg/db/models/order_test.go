package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStoreIDsDistinctInOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	order := Order{Items: []OrderLineItem{{StoreID: a}, {StoreID: b}, {StoreID: a}}}

	assert.Equal(t, []uuid.UUID{a, b}, order.StoreIDs())
	assert.True(t, order.HasStore(b))
	assert.False(t, order.HasStore(uuid.New()))
}

func TestEnsureIDKeepsExisting(t *testing.T) {
	id := uuid.New()
	kept := id
	ensureID(&kept)
	assert.Equal(t, id, kept)

	var blank uuid.UUID
	ensureID(&blank)
	assert.NotEqual(t, uuid.Nil, blank)
}
