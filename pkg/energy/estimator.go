// Package energy provides pure battery/range conversions for EV trip
// planning. All functions are deterministic given their inputs and safe for
// concurrent callers.
package energy

import (
	"math"

	"roadtripgo/pkg/model"
)

const (
	// ComfortTempF is the temperature above which no cold penalty applies.
	ComfortTempF = 65.0
	// FreezingTempF gates the cold-soak penalty.
	FreezingTempF = 32.0
	// ColdPenaltyPerDegree reduces range by 1% per degree below ComfortTempF.
	ColdPenaltyPerDegree = 0.01
	// ColdSoakKWhPerHour is energy lost per hour parked below freezing.
	ColdSoakKWhPerHour = 1.5
	// ElevationPenaltyPer1000Ft reduces range by 2% per 1000ft of elevation change.
	ElevationPenaltyPer1000Ft = 0.02
	// DefaultSafetyBuffer is the extra battery margin on required-energy estimates.
	DefaultSafetyBuffer = 0.15
)

// EstimateRange returns the achievable range in miles for the vehicle at the
// given battery fraction under the given conditions.
//
// Adjustments apply in order: temperature, cold soak, elevation. The result
// is floored at zero.
func EstimateRange(v model.Vehicle, batteryPct float64, cond model.DrivingConditions) float64 {
	miles := v.RatedRangeMiles * batteryPct

	if cond.TemperatureF < ComfortTempF {
		factor := 1.0 - ColdPenaltyPerDegree*(ComfortTempF-cond.TemperatureF)
		if factor < 0 {
			factor = 0
		}
		miles *= factor
	}

	if coldSoakApplies(cond) && v.ConsumptionKWhPerMile > 0 {
		miles -= (cond.ColdSoakHours * ColdSoakKWhPerHour) / v.ConsumptionKWhPerMile
	}

	miles *= 1.0 - ElevationPenaltyPer1000Ft*(math.Abs(cond.ElevationChangeFt)/1000.0)

	return math.Max(0, miles)
}

// RequiredBattery returns the battery fraction needed to cover distMiles
// under the given conditions, including the safety buffer. Values above 1.0
// mean the leg cannot be covered even on a full charge.
//
// Temperature and elevation scale the energy estimate multiplicatively; this
// is an independent computation over energy, not a reuse of the range
// adjustments.
func RequiredBattery(v model.Vehicle, distMiles float64, cond model.DrivingConditions) float64 {
	return RequiredBatteryWithBuffer(v, distMiles, cond, DefaultSafetyBuffer)
}

// RequiredBatteryWithBuffer is RequiredBattery with an explicit safety buffer
// fraction.
func RequiredBatteryWithBuffer(v model.Vehicle, distMiles float64, cond model.DrivingConditions, buffer float64) float64 {
	if v.BatteryCapacityKWh <= 0 || distMiles <= 0 {
		return 0
	}

	energyKWh := distMiles * v.ConsumptionKWhPerMile
	if coldSoakApplies(cond) {
		energyKWh += cond.ColdSoakHours * ColdSoakKWhPerHour
	}

	if cond.TemperatureF < ComfortTempF {
		energyKWh *= 1.0 + ColdPenaltyPerDegree*(ComfortTempF-cond.TemperatureF)
	}
	energyKWh *= 1.0 + ElevationPenaltyPer1000Ft*(math.Abs(cond.ElevationChangeFt)/1000.0)

	return energyKWh / v.BatteryCapacityKWh * (1.0 + buffer)
}

// IsTripSafe reports whether the current battery covers the trip with the
// default safety buffer.
func IsTripSafe(v model.Vehicle, batteryPct, distMiles float64, cond model.DrivingConditions) bool {
	return batteryPct >= RequiredBattery(v, distMiles, cond)
}

func coldSoakApplies(cond model.DrivingConditions) bool {
	return cond.ColdSoak && cond.TemperatureF < FreezingTempF && cond.ColdSoakHours > 0
}
