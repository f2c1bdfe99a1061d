package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus tracks back-office fulfilment. This service only ever writes
// orders in state pending; later transitions happen in the CMS.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusPaymentSent   OrderStatus = "payment_sent"
	OrderStatusPaid          OrderStatus = "paid"
	OrderStatusManufacturing OrderStatus = "manufacturing"
	OrderStatusShipped       OrderStatus = "shipped"
	OrderStatusCompleted     OrderStatus = "completed"
)

// LampDetails describes the lamp being ordered, whether a catalog design or
// an AI-generated custom one.
type LampDetails struct {
	ImageURL       string `json:"imageUrl"`
	Description    string `json:"description"`
	Style          string `json:"style"`
	Environment    string `json:"environment"`
	IsCustom       bool   `json:"isCustom"`
	EstimatedPrice int    `json:"estimatedPrice"`
	PriceReasoning string `json:"priceReasoning"`
}

// Order is the record persisted to the content store once per purchase.
type Order struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Notes      string
	Lamp       LampDetails
	Status     OrderStatus
	OrderDate  time.Time
}

// Validate enforces the contact-field invariants. An Order is never
// constructed without validated contact fields.
func (o *Order) Validate() error {
	for field, v := range map[string]string{
		"name":       o.Name,
		"email":      o.Email,
		"phone":      o.Phone,
		"address":    o.Address,
		"city":       o.City,
		"postalCode": o.PostalCode,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
		}
	}
	if !ValidEmail(o.Email) {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return nil
}

// ValidEmail applies the same minimal check the storefront uses.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1
}
