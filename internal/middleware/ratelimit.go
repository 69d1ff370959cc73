package middleware

// Limits: server-side caps applied before any room mutation
type Limits struct {
	MaxRooms          int
	MaxMessageSize    int
	MaxStrokePoints   int
	MessagesPerSecond float64
	BurstSize         int
}

// DefaultLimits: caps used when the environment doesn't override them
func DefaultLimits() *Limits {
	return &Limits{
		MaxRooms:          500,
		MaxMessageSize:    64 * 1024,
		MaxStrokePoints:   10000,
		MessagesPerSecond: 30,
		BurstSize:         10,
	}
}

// ValidateMessageSize: checks if a message is within the size limit
func (l *Limits) ValidateMessageSize(msgSize int) bool {
	return msgSize <= l.MaxMessageSize
}

// ValidateStrokePoints: checks if a stroke path is within the point cap
func (l *Limits) ValidateStrokePoints(points int) bool {
	return points <= l.MaxStrokePoints
}
