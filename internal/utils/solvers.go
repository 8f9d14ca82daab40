package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TernarySearchMax returns the argmax of a unimodal f on [left, right] to within eps.
func TernarySearchMax(f func(float64) float64, left, right, eps float64) float64 {
	for right-left > eps {
		a := math.FMA(left, 2., right) / 3.
		b := math.FMA(right, 2., left) / 3.
		if f(a) > f(b) {
			right = b
		} else {
			left = a
		}
	}
	return (left + right) * 0.5
}

// return the point of the condition support that is not farther than eps from the support boundary
// invariant: at *right* condition must be TRUE
func BinarySearch(condition func(float64) bool, falseDom, trueDom, eps float64) (float64, float64) {
	for math.Abs(trueDom-falseDom) > eps {
		c := (falseDom + trueDom) * 0.5
		if condition(c) {
			trueDom = c
		} else {
			falseDom = c
		}
	}
	return falseDom, trueDom
}

// Linspace returns n evenly spaced points from `from` to `to` inclusive.
func Linspace(from, to float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{from}
	}
	return floats.Span(make([]float64, n), from, to)
}
