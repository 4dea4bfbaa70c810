package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractItems_TwoCompleteItems(t *testing.T) {
	text := "[ITEM-1] description: Bolt, qty: 10, price: $2.50 [ITEM-2] description: Nut, qty: 20, price: $0.50"

	items := ExtractItems(text)
	require.Len(t, items, 2)

	assert.Equal(t, 1, items[0].Number)
	require.True(t, items[0].Complete())
	assert.Equal(t, "Bolt", *items[0].Description)
	assert.Equal(t, 10, *items[0].Quantity)
	assert.Equal(t, 2.50, *items[0].UnitPrice)

	assert.Equal(t, 2, items[1].Number)
	require.True(t, items[1].Complete())
	assert.Equal(t, "Nut", *items[1].Description)
	assert.Equal(t, 20, *items[1].Quantity)
	assert.Equal(t, 0.50, *items[1].UnitPrice)
}

func TestExtractItems_FieldPresence(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantDesc *string
		wantQty  *int
		wantCost *float64
	}{
		{name: "only description", text: "[ITEM-3] description: Washer", wantDesc: strPtr("Washer")},
		{name: "only price without dollar", text: "[ITEM-3] price: 12", wantCost: floatPtr(12)},
		{name: "only qty", text: "[ITEM-3] qty: 7", wantQty: intPtr(7)},
		{name: "price and qty", text: "[ITEM-3] price: $1.25; qty: 4", wantQty: intPtr(4), wantCost: floatPtr(1.25)},
		{name: "description stops at semicolon", text: "[ITEM-3] description: Hex nut M8; qty: 2", wantDesc: strPtr("Hex nut M8"), wantQty: intPtr(2)},
		{name: "labels are case insensitive", text: "[item-3] Description: Pin, QTY: 5, Price: $3", wantDesc: strPtr("Pin"), wantQty: intPtr(5), wantCost: floatPtr(3)},
		{name: "no labels", text: "[ITEM-3] we can supply this next week"},
		{name: "empty description", text: "[ITEM-3] description: , qty: 1", wantQty: intPtr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ExtractItems(tt.text)
			require.Len(t, items, 1)
			item := items[0]
			assert.Equal(t, 3, item.Number)
			assert.Equal(t, tt.wantDesc, item.Description)
			assert.Equal(t, tt.wantQty, item.Quantity)
			assert.Equal(t, tt.wantCost, item.UnitPrice)
		})
	}
}

func TestExtractItems_BodyEndsAtNextToken(t *testing.T) {
	items := ExtractItems("[ITEM-1] description: Shaft [ITEM-2] qty: 3, price: $9")
	require.Len(t, items, 2)
	assert.Nil(t, items[0].Quantity)
	assert.Nil(t, items[0].UnitPrice)
	assert.Nil(t, items[1].Description)
}

func TestExtractItems_NoTokens(t *testing.T) {
	assert.Empty(t, ExtractItems("Thanks for your request, we will revert shortly."))
	assert.Empty(t, ExtractItems(""))
}

func TestMaxItemNumber(t *testing.T) {
	assert.Equal(t, 0, MaxItemNumber("no tokens here"))
	assert.Equal(t, 12, MaxItemNumber("[ITEM-3] a [ITEM-12] b [ITEM-7] c"))
}

func TestFormatItemToken(t *testing.T) {
	assert.Equal(t, "[ITEM-4]", FormatItemToken(4))
	items := ExtractItems(FormatItemToken(4) + " qty: 1")
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Number)
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
