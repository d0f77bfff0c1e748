package address

import (
	"time"

	"github.com/google/uuid"
)

const MaxPerUser = 4

type Address struct {
	ID     uuid.UUID
	UserID uuid.UUID

	FirstName string
	LastName  string
	Phone     string

	Line1      string
	Line2      *string
	City       string
	Province   string
	PostalCode string
	Country    string

	IsDefault bool
	CreatedAt time.Time
}

type CreateAddressInput struct {
	FirstName    string
	LastName     string
	Phone        string
	Line1        string
	Line2        *string
	City         string
	Province     string
	PostalCode   string
	Country      string
	SetAsDefault bool
}
