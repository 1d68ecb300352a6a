package model

import "fmt"

// Quality describes how a value was obtained from the grid.
type Quality uint8

const (
	// Undefined means no valid grid cell surrounds the point.
	Undefined Quality = iota
	// Interpolated means all four surrounding cells hold data.
	Interpolated
	// Extrapolated1 means three of the four surrounding cells hold data.
	Extrapolated1
	// Extrapolated2 means two of the four surrounding cells hold data.
	Extrapolated2
	// Extrapolated3 means a single surrounding cell holds data.
	Extrapolated3
)

// QualityFromCorners maps the number of valid bilinear corners to a Quality.
func QualityFromCorners(n int) Quality {
	switch n {
	case 4:
		return Interpolated
	case 3:
		return Extrapolated1
	case 2:
		return Extrapolated2
	case 1:
		return Extrapolated3
	default:
		return Undefined
	}
}

// Code is the integer used on the wire: the number of valid corners.
func (q Quality) Code() int {
	switch q {
	case Interpolated:
		return 4
	case Extrapolated1:
		return 3
	case Extrapolated2:
		return 2
	case Extrapolated3:
		return 1
	default:
		return 0
	}
}

// IsDefined reports whether q carries a value.
func (q Quality) IsDefined() bool { return q != Undefined }

func (q Quality) String() string {
	switch q {
	case Undefined:
		return "undefined"
	case Interpolated:
		return "interpolated"
	case Extrapolated1:
		return "extrapolated_1"
	case Extrapolated2:
		return "extrapolated_2"
	case Extrapolated3:
		return "extrapolated_3"
	default:
		return fmt.Sprintf("Quality(%d)", uint8(q))
	}
}
