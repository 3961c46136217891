package util

// Calculate clamps page/size query values into a safe offset+limit.
// Out-of-range sizes fall back to 10; pages start at 1.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	from = (page - 1) * size
	return from, size
}
