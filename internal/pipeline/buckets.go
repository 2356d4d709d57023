package pipeline

// populationBucket is a half-open interval [Min, Max). The final bucket is
// unbounded above (Max < 0).
type populationBucket struct {
	Min   int64
	Max   int64
	Label string
}

var populationBuckets = []populationBucket{
	{0, 1_000_000, "under 1 million"},
	{1_000_000, 10_000_000, "1–10 million"},
	{10_000_000, 50_000_000, "10–50 million"},
	{50_000_000, 100_000_000, "50–100 million"},
	{100_000_000, -1, "over 100 million"},
}

// PopulationBucket returns the labeled range containing population. Interval
// membership is half-open: a country with exactly 10,000,000 people falls in
// "10–50 million", not "1–10 million".
func PopulationBucket(population int64) string {
	for _, b := range populationBuckets {
		if population >= b.Min && (b.Max < 0 || population < b.Max) {
			return b.Label
		}
	}
	return populationBuckets[0].Label
}

// populationBucketLabels lists every bucket label, used as the distractor
// pool for population questions.
func populationBucketLabels() []string {
	labels := make([]string, len(populationBuckets))
	for i, b := range populationBuckets {
		labels[i] = b.Label
	}
	return labels
}
