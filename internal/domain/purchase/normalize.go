package purchase

// NormalizeAmounts shapes the requested amounts into exactly count
// entries. In same-value mode every entry is a copy of the first amount
// (0 when the input is empty). Otherwise entries are taken from the
// input by index, zero-filled when missing and truncated when the input
// is longer than count. The result is shape-only: callers validate that
// amounts are positive before any write.
func NormalizeAmounts(amounts []float64, count int, sameValue bool) []float64 {
	if count <= 0 {
		return []float64{}
	}

	normalized := make([]float64, count)

	if sameValue {
		var value float64
		if len(amounts) > 0 {
			value = amounts[0]
		}
		for i := range normalized {
			normalized[i] = value
		}
		return normalized
	}

	for i := 0; i < count && i < len(amounts); i++ {
		normalized[i] = amounts[i]
	}

	return normalized
}
