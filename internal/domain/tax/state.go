package tax

// State is the derived position of a record in its liability cycle
type State string

const (
	StateCurrent State = "CURRENT"
	StateOverdue State = "OVERDUE"
	StateSettled State = "SETTLED"
)

func (s State) String() string {
	return string(s)
}
