// Package pricing decides which sale override, if any, sets a product's
// effective price at a given instant.
package pricing

import (
	"time"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Qualifies reports whether a sale may set the price at now: it must be
// tagged active and its window [start, end) must contain now.
func Qualifies(sale *model.ProductSale, now time.Time) bool {
	return sale.Status == model.SaleStatusActive && sale.Covers(now)
}

// SelectWinner returns the qualifying sale with the lowest sale price.
// Equal prices resolve to the lowest sale ID so repeated evaluations agree.
func SelectWinner(sales []model.ProductSale, now time.Time) (*model.ProductSale, bool) {
	var winner *model.ProductSale
	for i := range sales {
		s := &sales[i]
		if !Qualifies(s, now) {
			continue
		}
		if winner == nil || beats(s, winner) {
			winner = s
		}
	}
	return winner, winner != nil
}

func beats(a, b *model.ProductSale) bool {
	switch a.SalePrice.Cmp(b.SalePrice) {
	case -1:
		return true
	case 0:
		return a.ID < b.ID
	}
	return false
}

// EffectivePrice returns the winning sale price, or base when nothing qualifies.
func EffectivePrice(base decimal.Decimal, sales []model.ProductSale, now time.Time) decimal.Decimal {
	if winner, ok := SelectWinner(sales, now); ok {
		return winner.SalePrice
	}
	return base
}

// DeriveStatus returns the status a sale window implies at now.
func DeriveStatus(start, end, now time.Time) model.SaleStatus {
	switch {
	case !now.Before(end):
		return model.SaleStatusExpired
	case now.Before(start):
		return model.SaleStatusScheduled
	default:
		return model.SaleStatusActive
	}
}
