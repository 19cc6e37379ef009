package analysis

// MaxHoldSec is the widest spacing between two recorded samples that is
// read as smart recording: the head unit skipped seconds where nothing
// changed, so the earlier value holds until the next one. Wider gaps are
// dropouts or pauses and stay null.
const MaxHoldSec = 10

// Spread places recorded values on a 1 Hz timeline of n samples. slots[i] is
// the second at which values[i] was recorded. Slots must not decrease;
// negative or out-of-range slots are skipped and a repeated slot keeps the
// later value. A nil values slice stays nil.
func Spread(values []*float64, slots []int, n int) []*float64 {
	if values == nil {
		return nil
	}

	out := make([]*float64, n)
	prev := -1
	for i, slot := range slots {
		if i >= len(values) || slot < 0 || slot >= n || slot < prev {
			continue
		}
		if prev >= 0 && slot-prev > 1 && slot-prev <= MaxHoldSec && out[prev] != nil {
			for j := prev + 1; j < slot; j++ {
				out[j] = out[prev]
			}
		}
		out[slot] = values[i]
		prev = slot
	}
	return out
}
