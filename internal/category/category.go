// Package category maps market identifiers and titles to a fixed taxonomy.
package category

import "strings"

// Category is one of the fixed market categories
type Category string

const (
	Sports   Category = "sports"
	Crypto   Category = "crypto"
	Indices  Category = "indices"
	Politics Category = "politics"
	Other    Category = "other"
)

// Ordered keyword sets. Evaluation order is load-bearing: a title matching
// both sports and crypto terms is sports.
var (
	sportsKeywords = []string{"winner", "wins by", "total points", "spread", "game", "match", "vs"}
	sportsTickers  = []string{"NBA", "NFL", "MLB", "NHL", "NCAA", "EPL", "MLS", "UFC", "BOXING", "NCAAMB", "NCAAF", "SERIE"}
	cryptoTickers  = []string{"BTC", "ETH", "BITCOIN", "ETHEREUM"}
	indexKeywords  = []string{"s&p", "nasdaq", "dow", "inx"}
	politicsWords  = []string{"trump", "biden", "government", "election", "congress", "fed chair"}
)

// Categorize assigns a category from the market identifier and title. It is
// total: every input maps to a category, falling back to Other.
func Categorize(identifier, title string) Category {
	idUpper := strings.ToUpper(identifier)
	titleLower := strings.ToLower(title)

	if containsAny(titleLower, sportsKeywords) || containsAny(idUpper, sportsTickers) {
		return Sports
	}
	// Crypto tickers match the identifier only; short tokens like ETH appear
	// inside ordinary words in titles.
	if containsAny(idUpper, cryptoTickers) {
		return Crypto
	}
	if containsAny(titleLower, indexKeywords) {
		return Indices
	}
	if containsAny(titleLower, politicsWords) {
		return Politics
	}
	return Other
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
