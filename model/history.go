package model

import "time"

// History is one confirmed outing. The restaurant reference may dangle
// after a catalog delete; the remaining columns stay valid and the
// association loads as null.
type History struct {
	Base
	Date         time.Time   `json:"date" gorm:"index"`
	RestaurantID string      `json:"restaurantId" gorm:"size:36;index"`
	Restaurant   *Restaurant `json:"restaurant" gorm:"foreignKey:RestaurantID"`
	PeopleCount  int         `json:"peopleCount"`
	Weather      string      `json:"weather"`
	IsRaining    bool        `json:"isRaining"`
	Confirmed    bool        `json:"confirmed"`
	Payment      *Payment    `json:"payment" gorm:"foreignKey:HistoryID"`
}

// Payment is the optional settlement record of a History entry, at most
// one per entry. Deleting the entry deletes its payment.
type Payment struct {
	Base
	HistoryID    string  `json:"historyId" gorm:"size:36;uniqueIndex"`
	PayerName    string  `json:"payerName"`
	Amount       float64 `json:"amount"`
	ReceiptImage string  `json:"receiptImage"`
}
