package greenwave

import "fmt"

// Phase represents the signal state assigned to a lane
type Phase int

const (
	// Red means the lane is stopped
	Red Phase = iota
	// Yellow is the transitional state between Red and Green
	Yellow
	// Green means the lane is being served
	Green
)

// String returns the lowercase name of the phase
func (p Phase) String() string {
	switch p {
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	default:
		return "red"
	}
}

// Vector returns the one-hot encoding of the phase as [red, yellow, green]
func (p Phase) Vector() [3]int {
	switch p {
	case Yellow:
		return [3]int{0, 1, 0}
	case Green:
		return [3]int{0, 0, 1}
	default:
		return [3]int{1, 0, 0}
	}
}

// MarshalJSON encodes the phase as its string name
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.String())), nil
}

// UnmarshalJSON decodes a phase from its string name
func (p *Phase) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"red"`:
		*p = Red
	case `"yellow"`:
		*p = Yellow
	case `"green"`:
		*p = Green
	default:
		return fmt.Errorf("unknown phase %s", data)
	}
	return nil
}
