package collector

const (
	bytesPerMB = 1024 * 1024
	bytesPerGB = 1024 * 1024 * 1024
)

// Percentage returns part as a percentage of total. A zero total yields 0
// rather than dividing by zero, so callers can feed it raw counters.
func Percentage(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// BytesToGB converts a byte count to binary gigabytes.
func BytesToGB(bytes uint64) float64 {
	return float64(bytes) / bytesPerGB
}

// BytesToMB converts a byte count to binary megabytes.
func BytesToMB(bytes uint64) float64 {
	return float64(bytes) / bytesPerMB
}

// UptimeParts splits an uptime in seconds into whole hours and the
// remaining whole minutes.
func UptimeParts(seconds uint64) (hours, minutes uint64) {
	hours = seconds / 3600
	minutes = (seconds % 3600) / 60
	return hours, minutes
}
