package models

import "time"

// The collections below belong to other parts of the shop. The auth service
// only reads them so they can be returned alongside the user.

type Store struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Favorite struct {
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Order struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachments groups the collections loaded for a single user.
type Attachments struct {
	Stores    []Store
	Favorites []Favorite
	Orders    []Order
}

// Attach copies the collections onto u, using empty slices instead of nil.
func (a *Attachments) Attach(u *User) {
	u.Stores = nonNil(a.Stores)
	u.Favorites = nonNil(a.Favorites)
	u.Orders = nonNil(a.Orders)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
