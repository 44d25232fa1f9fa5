package devapi

import (
	"github.com/shopspring/decimal"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
)

// Seed loads a small fixed catalog so the engine has something to resolve
// against out of the box.
func Seed(state *State) {
	products := []catalog.Snapshot{
		{
			ID:                 "p-1001",
			Title:              "iPhone 15 Pro",
			Brand:              "Apple",
			Category:           "smartphones",
			Thumbnail:          "https://cdn.example.com/p-1001.jpg",
			Price:              decimal.NewFromInt(999),
			DiscountPercentage: decimal.NewFromFloat(12.5),
			Stock:              24,
		},
		{
			ID:                 "p-1002",
			Title:              "Galaxy S24 Ultra",
			Brand:              "Samsung",
			Category:           "smartphones",
			Thumbnail:          "https://cdn.example.com/p-1002.jpg",
			Price:              decimal.NewFromInt(1199),
			DiscountPercentage: decimal.NewFromInt(10),
			Stock:              18,
		},
		{
			ID:                 "p-2001",
			Title:              "MacBook Air M3",
			Brand:              "Apple",
			Category:           "laptops",
			Thumbnail:          "https://cdn.example.com/p-2001.jpg",
			Price:              decimal.NewFromInt(1299),
			DiscountPercentage: decimal.Zero,
			Stock:              9,
		},
		{
			ID:                 "p-3001",
			Title:              "Sony WH-1000XM5",
			Brand:              "Sony",
			Category:           "audio",
			Thumbnail:          "https://cdn.example.com/p-3001.jpg",
			Price:              decimal.NewFromInt(349),
			DiscountPercentage: decimal.NewFromInt(20),
			Stock:              40,
		},
		{
			ID:                 "p-4001",
			Title:              "Kindle Paperwhite",
			Brand:              "Amazon",
			Category:           "tablets",
			Thumbnail:          "https://cdn.example.com/p-4001.jpg",
			Price:              decimal.NewFromFloat(149.99),
			DiscountPercentage: decimal.NewFromInt(5),
			Stock:              55,
		},
	}

	for _, p := range products {
		state.PutProduct(p)
	}
}
