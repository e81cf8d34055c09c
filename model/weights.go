package model

// Weights maps feature ids to real-valued weights. Missing ids weigh 0.
type Weights map[int]float64

// Dot sums the weights of ids.
func (w Weights) Dot(ids []int) float64 {
	var total float64
	for _, id := range ids {
		total += w[id]
	}
	return total
}
