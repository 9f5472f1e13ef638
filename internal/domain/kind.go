package domain

import "fmt"

// Kind is the structured-attribute schema variant an offer carries,
// selected by its leaf category. The mapping is static configuration: a
// leaf category with no kind is a deployment error, not a runtime
// fallback.
type Kind string

const (
	KindApparel     Kind = "apparel"
	KindFootwear    Kind = "footwear"
	KindElectronics Kind = "electronics"
	KindFurniture   Kind = "furniture"
	KindBooks       Kind = "books"
	KindToys        Kind = "toys"
)

var kindByCategory = map[string]Kind{
	"clothing-men":     KindApparel,
	"clothing-women":   KindApparel,
	"clothing-kids":    KindApparel,
	"sneakers":         KindFootwear,
	"boots":            KindFootwear,
	"phones":           KindElectronics,
	"laptops":          KindElectronics,
	"audio":            KindElectronics,
	"game-consoles":    KindElectronics,
	"chairs":           KindFurniture,
	"tables":           KindFurniture,
	"books-fiction":    KindBooks,
	"books-nonfiction": KindBooks,
	"board-games":      KindToys,
	"lego":             KindToys,
}

// KindForCategory resolves a leaf category slug to its kind.
func KindForCategory(slug string) (Kind, error) {
	k, ok := kindByCategory[slug]
	if !ok {
		return "", fmt.Errorf("category %q has no kind mapping", slug)
	}
	return k, nil
}
