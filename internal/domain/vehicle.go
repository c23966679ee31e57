package domain

import (
	"strconv"

	"rental/internal/calendar"
)

// VehicleType represents the category of a rentable vehicle.
type VehicleType string

const (
	VehicleTypeTukTuk VehicleType = "Tuk Tuk"
	VehicleTypeBike   VehicleType = "Bike"
	VehicleTypeVan    VehicleType = "Van"
	VehicleTypeSUV    VehicleType = "SUV"
	VehicleTypeCar    VehicleType = "Car"
)

// VehicleTypes lists every vehicle type in display order.
var VehicleTypes = []VehicleType{
	VehicleTypeTukTuk,
	VehicleTypeBike,
	VehicleTypeVan,
	VehicleTypeSUV,
	VehicleTypeCar,
}

// ParseVehicleType maps a raw label onto a VehicleType.
func ParseVehicleType(s string) (VehicleType, bool) {
	for _, t := range VehicleTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Money is an amount in whole currency units.
type Money int64

// String formats the amount the way the storefront shows it, e.g. "Rs. 10,500".
func (m Money) String() string {
	s := strconv.FormatInt(int64(m), 10)
	sign := ""
	if m < 0 {
		sign, s = "-", s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	n := len(s)
	for i := 0; i < n; i++ {
		out = append(out, s[i])
		if pos := n - i - 1; pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	return "Rs. " + sign + string(out)
}

// Vehicle is a catalog entry. The booking flow never mutates it.
type Vehicle struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Type          VehicleType      `json:"type"`
	PricePerDay   Money            `json:"price_per_day"`
	Capacity      int              `json:"capacity"`
	Images        []string         `json:"images"`
	DriverContact string           `json:"driver_contact"`
	Description   string           `json:"description"`
	Features      []string         `json:"features"`
	BookedDates   calendar.DateSet `json:"booked_dates"`
}

// Clone returns a deep copy so callers cannot alias catalog state.
func (v *Vehicle) Clone() *Vehicle {
	c := *v
	c.Images = append([]string(nil), v.Images...)
	c.Features = append([]string(nil), v.Features...)
	c.BookedDates = v.BookedDates.Clone()
	return &c
}
