package game

// Cost is an amount of purchasable resources consumed by play.
type Cost struct {
	Hints       int `json:"hints"`
	Lives       int `json:"lives"`
	TimeSeconds int `json:"timeSeconds"`
}

// Add returns the component-wise sum of both costs.
func (c Cost) Add(other Cost) Cost {
	return Cost{
		Hints:       c.Hints + other.Hints,
		Lives:       c.Lives + other.Lives,
		TimeSeconds: c.TimeSeconds + other.TimeSeconds,
	}
}

func (c Cost) IsZero() bool {
	return c == Cost{}
}
