package entity

import "service-marketplace/pkg/geo"

// Address is a postal address stored inline on its owner.
type Address struct {
	Street  string `gorm:"type:varchar(255)" json:"street"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
	ZipCode string `gorm:"type:varchar(20)" json:"zipCode"`
}

// Coordinates holds an optional longitude/latitude pair.
type Coordinates struct {
	Longitude *float64 `gorm:"type:double precision" json:"longitude,omitempty"`
	Latitude  *float64 `gorm:"type:double precision" json:"latitude,omitempty"`
}

// Point returns nil unless both components are present.
func (c Coordinates) Point() *geo.Point {
	return geo.NewPoint(c.Longitude, c.Latitude)
}

// CoordinatesFromPoint is the inverse of Point.
func CoordinatesFromPoint(p *geo.Point) Coordinates {
	if p == nil {
		return Coordinates{}
	}
	lng, lat := p.Longitude, p.Latitude
	return Coordinates{Longitude: &lng, Latitude: &lat}
}

// Location combines an address with its coordinates.
type Location struct {
	Address     `gorm:"embedded"`
	Coordinates `gorm:"embedded"`
}
