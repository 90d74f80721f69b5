package types

// Inventory is a snapshot of the purchasable resources a player owns.
type Inventory struct {
	ExtraHintCount   int  `json:"extraHintCount"`
	ExtraLiveCount   int  `json:"extraLiveCount"`
	ExtraTimeSeconds int  `json:"extraTimeSeconds"`
	NoAds            bool `json:"noAds"`
	UnlimitedTime    bool `json:"unlimitedTime"`
}

// Copy returns a copy of the inventory, or nil for a nil inventory.
func (i *Inventory) Copy() *Inventory {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
