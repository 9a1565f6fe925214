package utils

// ConnectionStats collects a handful of connection-wide counters that a
// congestion controller may want to read but never mutates on its own.
// The teacher's own tests only ever construct this as &utils.ConnectionStats{}
// and never populate it; C4 keeps the same shape for the same reason — the
// host, not the controller, owns these counters.
type ConnectionStats struct {
	PacketsSent     uint64
	PacketsLost     uint64
	PacketsAcked    uint64
	ECNCE           uint64
	BytesRetransmit uint64
}
