package book_models

// Book is a read-only catalog entry from the upstream store.
type Book struct {
	ID   string  `json:"_id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// RatesByID builds a lookup of unit rates keyed by book id.
func RatesByID(books []Book) map[string]float64 {
	rates := make(map[string]float64, len(books))
	for _, b := range books {
		rates[b.ID] = b.Rate
	}
	return rates
}
