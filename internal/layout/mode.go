package layout

// Mode is the active visual arrangement.
type Mode int

const (
	Compact Mode = iota
	Full
)

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "compact"
}

// Select returns Full when width reaches the threshold.
func Select(th Threshold, width int) Mode {
	if width >= th.Pixels() {
		return Full
	}
	return Compact
}
