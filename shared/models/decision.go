package models

// Decision is the respond/ignore classification of an input post.
type Decision int

const (
	// DecisionIgnore is the zero value: silence is the default.
	DecisionIgnore Decision = iota
	DecisionRespond
)

func (d Decision) String() string {
	if d == DecisionRespond {
		return "respond"
	}
	return "ignore"
}
