package domain

import "time"

type ID string

type Type string

const (
	TypeBuy  Type = "buy"
	TypeRent Type = "rent"
)

type Property string

const (
	PropertyApartment Property = "apartment"
	PropertyHouse     Property = "house"
	PropertyCondo     Property = "condo"
	PropertyLand      Property = "land"
)

func (t Type) Valid() bool {
	return t == TypeBuy || t == TypeRent
}

func (p Property) Valid() bool {
	switch p {
	case PropertyApartment, PropertyHouse, PropertyCondo, PropertyLand:
		return true
	}
	return false
}

type Listing struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Images    []string  `json:"images"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Bedroom   *int      `json:"bedroom"`
	Bathroom  *int      `json:"bathroom"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	Type      Type      `json:"type"`
	Property  Property  `json:"property"`
	OwnerID   string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Detail struct {
	Description string  `json:"desc"`
	Utilities   *string `json:"utilities"`
	Pet         *string `json:"pet"`
	Income      *string `json:"income"`
	Size        *int    `json:"size"`
	School      *int    `json:"school"`
	Bus         *int    `json:"bus"`
	Restaurant  *int    `json:"restaurant"`
}

type Owner struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

// View is a single listing as shown on its page.
type View struct {
	Listing
	Detail  *Detail `json:"postDetail"`
	Owner   Owner   `json:"user"`
	IsSaved bool    `json:"isSaved"`
}

// Filter fields left nil impose no constraint.
type Filter struct {
	City     *string
	Type     *Type
	Property *Property
	Bedroom  *int
	MinPrice int64
	MaxPrice int64
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title     *string
	Price     *int64
	Images    *[]string
	Address   *string
	City      *string
	Bedroom   *int
	Bathroom  *int
	Latitude  *string
	Longitude *string
	Type      *Type
	Property  *Property
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Price == nil && p.Images == nil && p.Address == nil &&
		p.City == nil && p.Bedroom == nil && p.Bathroom == nil && p.Latitude == nil &&
		p.Longitude == nil && p.Type == nil && p.Property == nil
}
