package service

import (
	"rental/internal/domain"
)

// TotalPrice is pricePerDay * totalDays. No proration, discounts or taxes.
func TotalPrice(pricePerDay domain.Money, totalDays int) domain.Money {
	return pricePerDay * domain.Money(totalDays)
}

// Quote builds a draft for a validated, available range.
func Quote(vehicle *domain.Vehicle, r domain.DateRange) *domain.BookingDraft {
	days := r.Days()
	return &domain.BookingDraft{
		Vehicle:    *vehicle.Clone(),
		Range:      r,
		TotalDays:  days,
		TotalPrice: TotalPrice(vehicle.PricePerDay, days),
	}
}
