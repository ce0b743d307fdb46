package book

// Account is one of the two logical capital pools. IDs are opaque,
// operator-chosen strings; nothing in the core keys behavior off the name.
type Account struct {
	ID       string
	Fraction float64 // share of total capital this book may deploy
}
