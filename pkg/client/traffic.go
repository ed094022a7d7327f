package client

type TrafficStatus string

const (
	TrafficNormal   TrafficStatus = "normal"
	TrafficModerate TrafficStatus = "moderate"
	TrafficHigh     TrafficStatus = "high"

	highTrafficThreshold     = 60
	moderateTrafficThreshold = 30
)

// StatusOf classifies a rate in Mbps. Both thresholds are exclusive.
func StatusOf(rate float64) TrafficStatus {
	switch {
	case rate > highTrafficThreshold:
		return TrafficHigh
	case rate > moderateTrafficThreshold:
		return TrafficModerate
	default:
		return TrafficNormal
	}
}

// Color is the chart color for the status.
func (s TrafficStatus) Color() string {
	switch s {
	case TrafficHigh:
		return "red"
	case TrafficModerate:
		return "yellow"
	default:
		return "green"
	}
}

// Chartable keeps the devices with a positive rate, in their original order.
func Chartable(devices []Device) []Device {
	result := make([]Device, 0, len(devices))

	for _, device := range devices {
		if device.TrafficRate > 0 {
			result = append(result, device)
		}
	}

	return result
}
