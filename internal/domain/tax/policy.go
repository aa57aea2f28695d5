package tax

import "github.com/andrescamacho/factory-economy/internal/domain/shared"

// Policy holds the rates used to assess and penalise tax
type Policy struct {
	BaseRate        shared.Money
	LevelMultiplier shared.Money
	LateFeeRate     shared.Money
}

// NewPolicy builds a policy from fractional rates such as 0.05
func NewPolicy(baseRate, levelMultiplier, lateFeeRate float64) Policy {
	return Policy{
		BaseRate:        shared.Fraction(baseRate),
		LevelMultiplier: shared.Fraction(levelMultiplier),
		LateFeeRate:     shared.Fraction(lateFeeRate),
	}
}

// Assess computes price x (base + multiplier x (level-1)) x (1 - reduction),
// rounded to cents. reduction is clamped to [0, 1].
func (p Policy) Assess(price shared.Money, level int, reduction float64) shared.Money {
	if level < 1 {
		level = 1
	}
	rate := p.BaseRate.Add(p.LevelMultiplier.Mul(shared.NewMoney(float64(level - 1))))

	if reduction < 0 {
		reduction = 0
	} else if reduction > 1 {
		reduction = 1
	}
	keep := shared.NewMoney(1).Sub(shared.Fraction(reduction))

	return shared.RoundCents(price.Mul(rate).Mul(keep))
}
