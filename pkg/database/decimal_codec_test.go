package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type valued struct {
	Value    decimal.Decimal  `bson:"value"`
	Optional *decimal.Decimal `bson:"optional,omitempty"`
}

func TestDecimalCodec_StoresExactString(t *testing.T) {
	reg := NewRegistry()
	opt := decimal.RequireFromString("0.1")

	data, err := bson.MarshalWithRegistry(reg, valued{Value: decimal.RequireFromString("1234567.890123"), Optional: &opt})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "1234567.890123", raw["value"])
	assert.Equal(t, "0.1", raw["optional"])

	var back valued
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &back))
	assert.True(t, back.Value.Equal(decimal.RequireFromString("1234567.890123")))
	require.NotNil(t, back.Optional)
	assert.True(t, back.Optional.Equal(opt))
}

func TestDecimalCodec_DecodesNumericTypes(t *testing.T) {
	reg := NewRegistry()
	d128, err := primitive.ParseDecimal128("12.5")
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  bson.M
		want string
	}{
		{"double", bson.M{"value": 0.25}, "0.25"},
		{"int32", bson.M{"value": int32(7)}, "7"},
		{"int64", bson.M{"value": int64(9000000000)}, "9000000000"},
		{"decimal128", bson.M{"value": d128}, "12.5"},
		{"null", bson.M{"value": nil}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(tt.doc)
			require.NoError(t, err)

			var out valued
			require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
			assert.True(t, out.Value.Equal(decimal.RequireFromString(tt.want)), "got %s", out.Value)
		})
	}
}

func TestDecimalCodec_RejectsGarbage(t *testing.T) {
	data, err := bson.Marshal(bson.M{"value": "not-a-number"})
	require.NoError(t, err)

	var out valued
	assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), data, &out))
}

func TestIndexModels_CoverCollections(t *testing.T) {
	models := indexModels()
	for _, name := range []string{PortfoliosCollection, AssetsCollection, SnapshotsCollection} {
		assert.NotEmpty(t, models[name], name)
	}
}
