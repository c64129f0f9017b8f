// Package timing computes when a narration must start so that it finishes
// just before arrival at the POI, under a constant-speed assumption.
package timing

import (
	"time"
)

// MinTriggerDistanceMiles is the floor on the trigger distance, so narration
// never starts on top of the POI.
const MinTriggerDistanceMiles = 0.5

// Window is the target arrival window: narration should complete between
// Lower and Upper before arrival.
type Window struct {
	Lower time.Duration
	Upper time.Duration
}

// DefaultWindow targets completion 60-120 seconds before arrival.
func DefaultWindow() Window {
	return Window{Lower: 60 * time.Second, Upper: 120 * time.Second}
}

// Timing is the playback schedule for one narration.
type Timing struct {
	TriggerDistanceMiles             float64
	TimeToTrigger                    time.Duration
	NarrationTravelMiles             float64
	DistanceFromPOIOnCompletionMiles float64
	// IsValid is false when the narration cannot finish before arrival from
	// the current distance; the caller should shorten content or skip ahead.
	IsValid bool
}

// Calculate returns the trigger schedule for a narration of the given spoken
// duration, at distanceMiles from the POI travelling at speedMph.
func Calculate(narration time.Duration, distanceMiles, speedMph float64, w Window) Timing {
	if speedMph <= 0 {
		// Stationary: no meaningful schedule. Trigger distance keeps its
		// floor so the result still satisfies the minimum invariant.
		return Timing{
			TriggerDistanceMiles:             MinTriggerDistanceMiles,
			DistanceFromPOIOnCompletionMiles: distanceMiles,
			IsValid:                          false,
		}
	}

	narrationSecs := narration.Seconds()
	travelMiles := speedMph * narrationSecs / 3600.0
	idealTrigger := travelMiles + speedMph*w.Lower.Seconds()/3600.0

	trigger := idealTrigger
	if trigger < MinTriggerDistanceMiles {
		trigger = MinTriggerDistanceMiles
	}

	timeToTrigger := (distanceMiles - trigger) / speedMph * 3600.0
	if timeToTrigger < 0 {
		timeToTrigger = 0
	}

	completion := distanceMiles - travelMiles

	return Timing{
		TriggerDistanceMiles:             trigger,
		TimeToTrigger:                    time.Duration(timeToTrigger * float64(time.Second)),
		NarrationTravelMiles:             travelMiles,
		DistanceFromPOIOnCompletionMiles: completion,
		IsValid:                          completion > 0 && trigger <= distanceMiles,
	}
}
