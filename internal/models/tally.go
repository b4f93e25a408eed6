package models

// DeliveryTally aggregates per-recipient broadcast outcomes.
// Successful + Failed always equals the size of the recipient snapshot.
type DeliveryTally struct {
	Successful int
	Failed     int
}

func (t DeliveryTally) Total() int {
	return t.Successful + t.Failed
}
