package logic

// Filter is a majority-vote filter over the last N raw samples.
// The window is allocated once and never resized.
type Filter struct {
	window    []bool
	cursor    int // next write position
	count     int // number of true entries in window
	threshold int
}

// NewFilter creates a filter with the given window size and threshold percent.
// A non-positive window falls back to DefaultWindow.
func NewFilter(window, thresholdPercent int) *Filter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Filter{
		window:    make([]bool, window),
		threshold: clampThreshold(thresholdPercent),
	}
}

// Update pushes a raw sample and returns the filtered result.
func (f *Filter) Update(sample bool) FilterResult {
	// Evict the oldest entry, which sits at the cursor.
	if f.window[f.cursor] {
		f.count--
	}
	f.window[f.cursor] = sample
	if sample {
		f.count++
	}
	f.cursor = (f.cursor + 1) % len(f.window)

	return f.result()
}

// Result returns the filtered view without pushing a sample.
func (f *Filter) Result() FilterResult {
	return f.result()
}

func (f *Filter) result() FilterResult {
	percent := f.count * 100 / len(f.window)
	return FilterResult{
		Filtered: percent >= f.threshold,
		Percent:  percent,
	}
}

// SetThreshold changes the threshold, effective from the next Update.
func (f *Filter) SetThreshold(percent int) {
	f.threshold = clampThreshold(percent)
}

// Threshold returns the active threshold percent.
func (f *Filter) Threshold() int {
	return f.threshold
}

// Size returns the window length.
func (f *Filter) Size() int {
	return len(f.window)
}

// clampThreshold keeps p in [1,100]. A threshold of 0 would pass an
// all-quiet window.
func clampThreshold(p int) int {
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
