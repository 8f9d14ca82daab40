package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

type Number interface {
	constraints.Float | constraints.Integer
}

func Average[T Number](s []T) (mean float64) {
	if len(s) == 0 {
		return 0
	}
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}
