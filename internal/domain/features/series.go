package features

import "math"

// Series primitives for per-entity feature engineering. A series is a
// day-ordered []float64 for one entity; NaN marks a missing value.
// Every operation is causal: position t sees only positions <= t.

// Shift returns the series displaced forward by k: out[t] = xs[t-k].
// Positions with fewer than k prior observations are NaN. A negative k
// shifts backward (used for next-period targets).
func Shift(xs []float64, k int) []float64 {
	out := make([]float64, len(xs))
	for t := range out {
		src := t - k
		if src < 0 || src >= len(xs) {
			out[t] = math.NaN()
		} else {
			out[t] = xs[src]
		}
	}
	return out
}

// Diff returns first differences: out[t] = xs[t] - xs[t-1], NaN at t=0.
func Diff(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for t := range out {
		if t == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = xs[t] - xs[t-1]
	}
	return out
}

// PctChange returns out[t] = xs[t]/xs[t-1] - 1, NaN at t=0 or when the
// prior value is missing or zero.
func PctChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for t := range out {
		if t == 0 || math.IsNaN(xs[t]) || math.IsNaN(xs[t-1]) || xs[t-1] == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = xs[t]/xs[t-1] - 1
	}
	return out
}

// windowValues collects the non-missing values in the trailing window
// ending at t (inclusive).
func windowValues(xs []float64, t, window int) []float64 {
	start := t - window + 1
	if start < 0 {
		start = 0
	}
	vals := make([]float64, 0, window)
	for i := start; i <= t; i++ {
		if !math.IsNaN(xs[i]) {
			vals = append(vals, xs[i])
		}
	}
	return vals
}

// RollingMean computes the trailing-window mean with an expanding window
// during warmup. Fewer than minPeriods observations yields NaN.
func RollingMean(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for t := range xs {
		vals := windowValues(xs, t, window)
		if len(vals) < minPeriods {
			out[t] = math.NaN()
			continue
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		out[t] = sum / float64(len(vals))
	}
	return out
}

// RollingStd computes the trailing-window sample standard deviation.
// Fewer than minPeriods observations yields NaN; a single observation
// yields the degenerate value 0 rather than NaN so warmup rows stay
// usable downstream.
func RollingStd(xs []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for t := range xs {
		vals := windowValues(xs, t, window)
		if len(vals) < minPeriods {
			out[t] = math.NaN()
			continue
		}
		if len(vals) < 2 {
			out[t] = 0
			continue
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		mean := sum / float64(len(vals))
		var ss float64
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		out[t] = math.Sqrt(ss / float64(len(vals)-1))
	}
	return out
}

// RollingCorr computes the trailing-window Pearson correlation between
// two series over pairwise-complete observations. Fewer than minPeriods
// pairs, or zero variance on either side, yields NaN.
func RollingCorr(xs, ys []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(xs))
	for t := range xs {
		start := t - window + 1
		if start < 0 {
			start = 0
		}
		var xv, yv []float64
		for i := start; i <= t; i++ {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			xv = append(xv, xs[i])
			yv = append(yv, ys[i])
		}
		if len(xv) < minPeriods {
			out[t] = math.NaN()
			continue
		}
		out[t] = pearson(xv, yv)
	}
	return out
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// rsiPeriod is the canonical RSI window. The averaging convention is
// average gain over average loss magnitude across the trailing window,
// expanding during warmup.
const rsiPeriod = 14

// RSI computes the Relative Strength Index over the price series. When
// the average loss in the window is exactly zero the index saturates at
// 100 (all-gain window); a window with neither gains nor losses is
// undefined and yields NaN.
func RSI(prices []float64, period int) []float64 {
	deltas := Diff(prices)
	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		switch {
		case math.IsNaN(d):
			gains[i] = math.NaN()
			losses[i] = math.NaN()
		case d > 0:
			gains[i] = d
			losses[i] = 0
		default:
			gains[i] = 0
			losses[i] = -d
		}
	}

	avgGain := RollingMean(gains, period, 1)
	avgLoss := RollingMean(losses, period, 1)

	out := make([]float64, len(prices))
	for t := range out {
		ag, al := avgGain[t], avgLoss[t]
		if math.IsNaN(ag) || math.IsNaN(al) {
			out[t] = math.NaN()
			continue
		}
		if al == 0 {
			if ag == 0 {
				out[t] = math.NaN()
			} else {
				out[t] = 100
			}
			continue
		}
		rs := ag / al
		out[t] = 100 - 100/(1+rs)
	}
	return out
}
