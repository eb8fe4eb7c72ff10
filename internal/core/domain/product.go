package domain

import "time"

// Product is the catalog entry guarded by the gateway.
type Product struct {
	ID          int64     `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Quantity    int       `json:"quantity" bson:"quantity"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
