package models

import (
	"encoding/json"
	"time"
)

// Product is the menu entry a shopper adds to the cart or wishlist.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Desc  string  `json:"desc"`
	Img   string  `json:"img"`
}

type CartItem struct {
	Product
	Qty int `json:"qty"`
}

type WishlistItem Product

type User struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"loginTime,omitzero"`
	IsAdmin   bool      `json:"isAdmin"`
}

// Order keeps the submitted body verbatim. Only "orderID" and "status"
// are interpreted.
type Order map[string]any

// OrderID renders the submitted id as text; numeric ids compare by their
// literal form.
func (o Order) OrderID() string {
	return idString(o["orderID"])
}

func (o Order) Status() string {
	s, _ := o["status"].(string)
	return s
}

// ChatMessage keeps the submitted body verbatim; only "id" is interpreted.
type ChatMessage map[string]any

func (m ChatMessage) MessageID() string {
	return idString(m["id"])
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// KVRecord is one named collection of a local store, kept as text.
type KVRecord struct {
	Key       string    `gorm:"primaryKey;size:255"  json:"key"`
	Value     string    `gorm:"type:text;not null"   json:"value"`
	UpdatedAt time.Time `                            json:"updated_at"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
