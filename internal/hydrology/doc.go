// Package hydrology estimates flood indicators from rainfall totals.
//
// # Model Chain
//
//	rainfall (mm) → runoff (mm) → water depth (m) → risk tier
//	rainfall (mm) → hourly depth series (m)
//
// Every function is pure: results depend only on the arguments, and the one
// stochastic step (progression jitter) draws from a caller-supplied
// [NoiseSource]. Nothing here performs I/O or holds state between calls, so
// districts can be assessed concurrently as long as each goroutine owns its
// noise source.
//
// # Runoff
//
// Surface runoff uses the SCS Curve Number method:
//
//	S  = 25400 / CN − 254      potential maximum retention (mm)
//	Ia = 0.2 · S               initial abstraction (mm)
//	Q  = 0                     when P ≤ Ia
//	Q  = (P − Ia)² / (P − Ia + S)
//
// Curve numbers come from a closed three-entry table keyed by [SoilClass]:
//
//	SoilHigh   (clay, urban; low infiltration)   CN 85
//	SoilMedium (loam)                            CN 70
//	SoilLow    (sand; high infiltration)         CN 55
//
// Any other SoilClass value resolves to CN 70. Because every CN lies in
// (0, 100), S is always positive and the runoff quotient never divides by
// zero.
//
// # Water Level
//
// Depth is runoff converted to metres and scaled by a fixed terrain factor of
// 1.5 for accumulation in concave terrain. The catchment area argument is
// validated but does not change the depth; it feeds only [RunoffVolume].
//
// # Risk Tiers
//
// Four tiers, checked from most to least severe. Each tier fires when depth
// OR rainfall exceeds its threshold:
//
//	EXTREME  depth > 4.0 m  or rainfall > 500 mm
//	HIGH     depth > 2.5 m  or rainfall > 350 mm
//	MEDIUM   depth > 1.5 m  or rainfall > 200 mm
//	LOW      otherwise
//
// # Progression
//
// The hourly series rises as (p/0.7)^1.5 until 70% of the window, then
// recedes as (1 − r)² to zero at the final hour, scaled by rainfall/100.
// Each sample gets independent multiplicative jitter in [−10%, +10%] and is
// clamped at zero.
package hydrology
