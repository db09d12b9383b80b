package catalog

import "github.com/shopspring/decimal"

// SampleProducts is the demo catalog served by MemProvider and used to seed
// an empty Postgres catalog.
func SampleProducts() []Product {
	price := decimal.RequireFromString
	return []Product{
		{
			ID:                 1,
			Title:              "iPhone 14 Pro",
			Description:        "Apple iPhone 14 Pro 256GB, Deep Purple, 6.1 inch Super Retina XDR display with ProMotion, A16 Bionic chip, Pro camera system.",
			Price:              price("999.99"),
			DiscountPercentage: 5.5,
			Rating:             4.8,
			Stock:              50,
			Brand:              "Apple",
			Category:           "smartphones",
			Thumbnail:          "https://www.notebookcheck.net/fileadmin/Notebooks/News/_nc3/Apple_iPhone_14_Pro_Colors.jpg",
			Images: []string{
				"https://www.notebookcheck.net/fileadmin/Notebooks/News/_nc3/Apple_iPhone_14_Pro_Colors.jpg",
				"https://www.apple.com/v/iphone-14-pro/c/images/overview/camera/intro/camera_intro__gd3lf4jfm42u_large.jpg",
			},
		},
		{
			ID:          2,
			Title:       "Samsung Galaxy S23 Ultra",
			Description: "Samsung Galaxy S23 Ultra, 512GB, Phantom Black, 6.8 inch Dynamic AMOLED 2X display, Snapdragon 8 Gen 2, 200MP camera.",
			Price:       price("1199.99"),
			Rating:      4.7,
			Stock:       42,
			Brand:       "Samsung",
			Category:    "smartphones",
			Thumbnail:   "https://www.notebookcheck.net/fileadmin/Notebooks/News/_nc3/Samsung_Galaxy_S23_Series_KV_2P_MO.jpg",
			Images: []string{
				"https://www.notebookcheck.net/fileadmin/Notebooks/News/_nc3/Samsung_Galaxy_S23_Series_KV_2P_MO.jpg",
				"https://www.androidauthority.com/wp-content/uploads/2023/02/Samsung-Galaxy-S23-Ultra-in-hand-closeup.jpg",
			},
		},
		{
			ID:                 3,
			Title:              "Sony WH-1000XM5",
			Description:        "Sony WH-1000XM5 Wireless Noise Cancelling Headphones, up to 30 hour battery life, with built-in microphone for phone calls.",
			Price:              price("399.99"),
			DiscountPercentage: 10,
			Rating:             4.9,
			Stock:              25,
			Brand:              "Sony",
			Category:           "electronics",
			Thumbnail:          "https://m.media-amazon.com/images/I/61+btxzpfDL._AC_SL1500_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/61+btxzpfDL._AC_SL1500_.jpg",
				"https://m.media-amazon.com/images/I/71DsI2FMt9L._AC_SL1500_.jpg",
			},
		},
		{
			ID:                 4,
			Title:              "LG C2 65-Inch OLED TV",
			Description:        "LG C2 65-Inch OLED evo Gallery Edition, 4K Smart TV with 120Hz refresh rate, Dolby Vision, Dolby Atmos, and NVIDIA G-SYNC compatibility.",
			Price:              price("1799.99"),
			DiscountPercentage: 15,
			Rating:             4.7,
			Stock:              15,
			Brand:              "LG",
			Category:           "electronics",
			Thumbnail:          "https://m.media-amazon.com/images/I/81M7xsUzXHL._AC_SL1500_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/81M7xsUzXHL._AC_SL1500_.jpg",
				"https://m.media-amazon.com/images/I/81XT+4HUMYL._AC_SL1500_.jpg",
			},
		},
		{
			ID:          5,
			Title:       "MacBook Pro 16-inch",
			Description: "MacBook Pro 16-inch with M2 Pro chip, 32GB unified memory, 1TB SSD storage, and 16-core GPU.",
			Price:       price("2699.99"),
			Rating:      4.9,
			Stock:       20,
			Brand:       "Apple",
			Category:    "laptops",
			Thumbnail:   "https://m.media-amazon.com/images/I/61fd2oCrvyL._AC_SL1500_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/61fd2oCrvyL._AC_SL1500_.jpg",
				"https://m.media-amazon.com/images/I/71xU6rmKkDL._AC_SL1500_.jpg",
			},
		},
		{
			ID:                 6,
			Title:              "Dell XPS 15",
			Description:        "Dell XPS 15 with 12th Gen Intel Core i9, 32GB RAM, 1TB SSD, and NVIDIA GeForce RTX 3050 Ti.",
			Price:              price("1999.99"),
			DiscountPercentage: 8,
			Rating:             4.6,
			Stock:              18,
			Brand:              "Dell",
			Category:           "laptops",
			Thumbnail:          "https://m.media-amazon.com/images/I/71DAFe9xN6L._AC_SL1500_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/71DAFe9xN6L._AC_SL1500_.jpg",
				"https://m.media-amazon.com/images/I/71oU5RNV7AL._AC_SL1500_.jpg",
			},
		},
		{
			ID:          7,
			Title:       "PlayStation 5",
			Description: "PlayStation 5 Console with Ultra-high speed SSD, ray tracing, 4K-TV gaming, and up to 120fps with 120Hz output.",
			Price:       price("499.99"),
			Rating:      4.8,
			Stock:       10,
			Brand:       "Sony",
			Category:    "gaming",
			Thumbnail:   "https://m.media-amazon.com/images/I/51wPWJ6LxCL._SL1500_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/51wPWJ6LxCL._SL1500_.jpg",
				"https://m.media-amazon.com/images/I/61SUJDrCTLL._SL1500_.jpg",
			},
		},
		{
			ID:          8,
			Title:       "Xbox Series X",
			Description: "Xbox Series X Console, the fastest, most powerful Xbox ever with 12 teraflops of raw graphic processing power.",
			Price:       price("499.99"),
			Rating:      4.7,
			Stock:       12,
			Brand:       "Microsoft",
			Category:    "gaming",
			Thumbnail:   "https://m.media-amazon.com/images/I/51ojzJk7dHL._SL1200_.jpg",
			Images: []string{
				"https://m.media-amazon.com/images/I/51ojzJk7dHL._SL1200_.jpg",
				"https://m.media-amazon.com/images/I/71NBQ2a52CL._SL1500_.jpg",
			},
		},
	}
}
