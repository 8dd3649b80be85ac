package resi

import "github.com/noah-isme/backend-logistik/internal/obs"

func countBatch(result string) {
	if obs.ResiBatchesTotal != nil {
		obs.ResiBatchesTotal.WithLabelValues(result).Inc()
	}
}

func countLinesWritten(n int) {
	if obs.ResiLinesWritten != nil {
		obs.ResiLinesWritten.Add(float64(n))
	}
	if obs.ResiBatchLines != nil && n > 0 {
		obs.ResiBatchLines.Observe(float64(n))
	}
}

func countMiss(kind string) {
	if obs.ResiResolutionMiss != nil {
		obs.ResiResolutionMiss.WithLabelValues(kind).Inc()
	}
}

func countRateMiss() {
	if obs.ResiRateMiss != nil {
		obs.ResiRateMiss.Inc()
	}
}

func countAmbiguity(kind string) {
	if obs.ResiReferenceAmbiguity != nil {
		obs.ResiReferenceAmbiguity.WithLabelValues(kind).Inc()
	}
}

func countUpdate(result string) {
	if obs.ResiUpdatesTotal != nil {
		obs.ResiUpdatesTotal.WithLabelValues(result).Inc()
	}
}
