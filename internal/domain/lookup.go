package domain

// Option is an id/label pair for patient, staff and room pickers.
type Option struct {
	ID      int64  `json:"id"`
	Display string `json:"display"`
}
