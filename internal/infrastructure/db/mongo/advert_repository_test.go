package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/adverts/adverts-api/internal/core/domain"
)

func TestAdvertDocument_RoundTrip(t *testing.T) {
	in := domain.Advert{
		ID:          12,
		Name:        "Bike",
		Description: "Old bike",
		Price:       decimal.RequireFromString("1234567.891"),
		DateAdded:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
	}

	doc, err := toDocument(&in)
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded advertDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	out, err := decoded.toDomain()
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.True(t, in.Price.Equal(out.Price), "price %s != %s", in.Price, out.Price)
	assert.True(t, in.DateAdded.Equal(out.DateAdded))
	assert.Equal(t, time.UTC, out.DateAdded.Location())
}

func TestAdvertDocument_StoredFieldNames(t *testing.T) {
	doc, err := toDocument(&domain.Advert{ID: 3, Name: "Lamp", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, key := range []string{"_id", "name", "description", "price", "date_added"} {
		assert.Contains(t, m, key)
	}
}
