package models

import "time"

// PurchaseReceipt is returned by a successful course purchase
type PurchaseReceipt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	Price       int       `json:"price"`
	PurchasedAt time.Time `json:"purchasedAt"`
}
