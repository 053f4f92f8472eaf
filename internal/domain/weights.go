package domain

type Weights struct {
	LocationID        int64 `json:"locationID"`
	TargetShifts      int64 `json:"targetShifts"`
	RestGap           int64 `json:"restGap"`
	MaxNights         int64 `json:"maxNights"`
	MaxMornings       int64 `json:"maxMornings"`
	MaxEvenings       int64 `json:"maxEvenings"`
	MinNights         int64 `json:"minNights"`
	MinMornings       int64 `json:"minMornings"`
	MinEvenings       int64 `json:"minEvenings"`
	ConsecutiveNights int64 `json:"consecutiveNights"`
	Preference        int64 `json:"preference"`
}

func DefaultWeights(locationID int64) *Weights {
	return &Weights{
		LocationID:        locationID,
		TargetShifts:      40,
		RestGap:           40,
		MaxNights:         5,
		MaxMornings:       6,
		MaxEvenings:       2,
		MinNights:         5,
		MinMornings:       4,
		MinEvenings:       2,
		ConsecutiveNights: 100,
		Preference:        10,
	}
}

// MaxWeight 返回某类别超出上限的惩罚权重
func (w *Weights) MaxWeight(c ShiftCategory) int64 {
	switch c {
	case CategoryMorning:
		return w.MaxMornings
	case CategoryEvening:
		return w.MaxEvenings
	case CategoryNight:
		return w.MaxNights
	}
	return 0
}

// MinWeight 返回某类别未达下限的惩罚权重
func (w *Weights) MinWeight(c ShiftCategory) int64 {
	switch c {
	case CategoryMorning:
		return w.MinMornings
	case CategoryEvening:
		return w.MinEvenings
	case CategoryNight:
		return w.MinNights
	}
	return 0
}
