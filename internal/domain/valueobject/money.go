package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/gig-escrow/internal/pkg/apperror"
)

var (
	minAmount = decimal.NewFromInt(1)
	maxAmount = decimal.NewFromInt(100_000_000)
)

// NewAmount проверяет денежную сумму заказа или предложения: от 1 до 100 млн,
// не более двух знаков после запятой.
func NewAmount(field string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThan(minAmount) {
		return decimal.Zero, apperror.Validation(field + " должна быть не меньше 1")
	}
	if amount.GreaterThan(maxAmount) {
		return decimal.Zero, apperror.Validation(field + " слишком велика")
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, apperror.Validation(field + " должна содержать не более двух знаков после запятой")
	}
	return amount, nil
}

const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRating проверяет оценку работы.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperror.Validation("оценка должна быть от 1 до 5")
	}
	return nil
}

// RollingAverage пересчитывает средний рейтинг исполнителя:
// (сумма прошлых оценок + новая) / (количество + 1), округление до одного знака
// половиной вверх.
func RollingAverage(priorSum, priorCount, rating int) decimal.Decimal {
	total := decimal.NewFromInt(int64(priorSum + rating))
	count := decimal.NewFromInt(int64(priorCount + 1))
	return total.Div(count).Round(1)
}
