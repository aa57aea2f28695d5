package factory

import "time"

// MinTaskDuration is the floor applied to every adjusted production or upgrade duration
const MinTaskDuration = time.Second

// ProductionDuration applies the level, labor and research reductions to a recipe's
// base duration. Each reduction is a fraction in [0, 1]; the level reduction is
// (level-1) x levelReduction. The result is rounded to the millisecond.
func ProductionDuration(base time.Duration, level int, levelReduction, laborReduction, researchReduction float64) time.Duration {
	levelBonus := float64(level-1) * levelReduction
	factor := (1 - clampFraction(levelBonus)) *
		(1 - clampFraction(laborReduction)) *
		(1 - clampFraction(researchReduction))
	return floorDuration(time.Duration(float64(base) * factor))
}

// UpgradeDuration reduces a configured upgrade duration by a research fraction
func UpgradeDuration(base time.Duration, researchReduction float64) time.Duration {
	return floorDuration(time.Duration(float64(base) * (1 - clampFraction(researchReduction))))
}

func floorDuration(d time.Duration) time.Duration {
	d = d.Round(time.Millisecond)
	if d < MinTaskDuration {
		return MinTaskDuration
	}
	return d
}

func clampFraction(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
