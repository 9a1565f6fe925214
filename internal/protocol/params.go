package protocol

// InitialPacketSizeIPv4 is the default maximum packet size used over IPv4,
// matching the teacher's own protocol.InitialPacketSizeIPv4 convention.
const InitialPacketSizeIPv4 = ByteCount(1252)

// MaxCongestionWindowPackets bounds the congestion window in units of the
// max datagram size, mirroring protocol.MaxCongestionWindowPackets.
const MaxCongestionWindowPackets = 10000

// DefaultInitialMaxStreamData is used as a stand-in flow-control ceiling
// when no explicit transport parameter is available.
const DefaultInitialMaxStreamData = ByteCount(1 << 20)

// CWINInitial and CWINMinimum mirror picoquic's PICOQUIC_CWIN_INITIAL and
// PICOQUIC_CWIN_MINIMUM: ten, respectively two, max-sized datagrams.
const (
	CWINInitial = ByteCount(10) * InitialPacketSizeIPv4
	CWINMinimum = ByteCount(2) * InitialPacketSizeIPv4
)

// MinMaxRTTScope is the count of RTT-tracker updates (reset on entering
// initial and on leaving recovery) that must be exceeded before the
// excess-delay detector is trusted, mirroring picoquic's
// PICOQUIC_MIN_MAX_RTT_SCOPE.
const MinMaxRTTScope = 8

// SmoothedLossThreshold is the loss-rate fraction above which the host's
// loss-rate test (picoquic_cc_hystart_loss_test) is expected to report a
// sustained loss condition, mirroring PICOQUIC_SMOOTHED_LOSS_THRESHOLD.
const SmoothedLossThreshold = 0.2
