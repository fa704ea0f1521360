package domain

// Log attribute keys shared across packages.
const (
	KeyState    = "state"
	KeyFrom     = "from"
	KeyTo       = "to"
	KeyFrame    = "frame"
	KeyPacketID = "packet_id"
	KeyBytes    = "bytes"
	KeyPlugin   = "plugin"
)
