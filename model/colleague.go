package model

// Colleague feeds the payer-name dropdown; nothing references it.
type Colleague struct {
	Base
	Name string `json:"name" gorm:"not null"`
}
