// Package calibration maps raw fusion scores to calibrated confidences via a
// piecewise-linear curve, and fits such curves from labeled outcomes with
// isotonic regression (pool-adjacent violators).
package calibration
