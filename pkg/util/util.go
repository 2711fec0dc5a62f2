package util

import (
	"golang.org/x/exp/constraints"
)

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// LowerBound returns the first position in the sorted arr whose value is >= target.
func LowerBound[T constraints.Ordered](arr []T, target T) int {
	left, right := 0, len(arr)
	for left < right {
		mid := left + (right-left)/2
		if arr[mid] < target {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left
}

// UpperBound returns the first position in the sorted arr whose value is > target.
func UpperBound[T constraints.Ordered](arr []T, target T) int {
	left, right := 0, len(arr)
	for left < right {
		mid := left + (right-left)/2
		if arr[mid] <= target {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left
}

// BinarySearch returns the position of target in the sorted arr, or -1.
func BinarySearch[T constraints.Ordered](arr []T, target T) int {
	pos := LowerBound(arr, target)
	if pos < len(arr) && arr[pos] == target {
		return pos
	}
	return -1
}

// SortedUnique sorts arr in place and removes duplicates.
func SortedUnique[T constraints.Ordered](arr []T) []T {
	if len(arr) == 0 {
		return arr
	}
	QuickSortG(arr)
	n := 1
	for i := 1; i < len(arr); i++ {
		if arr[i] != arr[n-1] {
			arr[n] = arr[i]
			n++
		}
	}
	return arr[:n]
}

func QuickSortG[T constraints.Ordered](arr []T) {
	if len(arr) < 2 {
		return
	}
	quickSort(arr, 0, len(arr)-1)
}

func quickSort[T constraints.Ordered](arr []T, low, high int) {
	for low < high {
		// median of three keeps already sorted osm id lists from degrading
		mid := low + (high-low)/2
		if arr[mid] < arr[low] {
			arr[mid], arr[low] = arr[low], arr[mid]
		}
		if arr[high] < arr[low] {
			arr[high], arr[low] = arr[low], arr[high]
		}
		if arr[mid] < arr[high] {
			arr[mid], arr[high] = arr[high], arr[mid]
		}
		pivotValue := arr[high]

		i := low - 1
		for j := low; j < high; j++ {
			if arr[j] < pivotValue {
				i++
				arr[i], arr[j] = arr[j], arr[i]
			}
		}
		arr[i+1], arr[high] = arr[high], arr[i+1]

		if i-low < high-i-2 {
			quickSort(arr, low, i)
			low = i + 2
		} else {
			quickSort(arr, i+2, high)
			high = i
		}
	}
}

func BitPackIntBool(a int32, b bool, offset int32) int32 {
	if b {
		return a | 1<<offset
	}
	return a
}

func BitUnpackIntBool(packed int32, offset int32) (int32, bool) {
	return packed & bitmask[offset], packed&(1<<offset) != 0
}

var bitmask = []int32{
	0b00000000000000000000000000000000, // 0 bits
	0b00000000000000000000000000000001, // 1 bit
	0b00000000000000000000000000000011, // 2 bits
	0b00000000000000000000000000000111, // 3 bits
	0b00000000000000000000000000001111, // 4 bits
	0b00000000000000000000000000011111, // 5 bits
	0b00000000000000000000000000111111, // 6 bits
	0b00000000000000000000000001111111, // 7 bits
	0b00000000000000000000000011111111, // 8 bits
	0b00000000000000000000000111111111, // 9 bits
	0b00000000000000000000001111111111, // 10 bits
	0b00000000000000000000011111111111, // 11 bits
	0b00000000000000000000111111111111, // 12 bits
	0b00000000000000000001111111111111, // 13 bits
	0b00000000000000000011111111111111, // 14 bits
	0b00000000000000000111111111111111, // 15 bits
	0b00000000000000001111111111111111, // 16 bits
	0b00000000000000011111111111111111, // 17 bits
	0b00000000000000111111111111111111, // 18 bits
	0b00000000000001111111111111111111, // 19 bits
	0b00000000000011111111111111111111, // 20 bits
	0b00000000000111111111111111111111, // 21 bits
	0b00000000001111111111111111111111, // 22 bits
	0b00000000011111111111111111111111, // 23 bits
	0b00000000111111111111111111111111, // 24 bits
	0b00000001111111111111111111111111, // 25 bits
	0b00000011111111111111111111111111, // 26 bits
	0b00000111111111111111111111111111, // 27 bits
	0b00001111111111111111111111111111, // 28 bits
	0b00011111111111111111111111111111, // 29 bits
	0b00111111111111111111111111111111, // 30 bits
	0b01111111111111111111111111111111, // 31 bits
}
