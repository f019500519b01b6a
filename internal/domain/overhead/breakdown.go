// Package overhead provides the immutable decomposed-timing value and its
// derived overhead arithmetic.
// Implements: spec.md §3 (OverheadBreakdown), §8 (invariants, scenario 3)
package overhead

import "time"

// Fields are the thirteen named duration components in protocol order,
// used as the constructor input for Breakdown.
type Fields struct {
	TotalLatency          time.Duration
	ConnectionAcquisition time.Duration
	ConnectionRelease     time.Duration
	SerializationTime     time.Duration
	WireTransmitTime      time.Duration
	ServerExecutionTime   time.Duration
	ServerParseTime       time.Duration
	ServerTraversalTime   time.Duration
	ServerIndexTime       time.Duration
	ServerFetchTime       time.Duration
	WireReceiveTime       time.Duration
	DeserializationTime   time.Duration
	ClientTraversalTime   time.Duration

	// PlatformSpecific is an open-ended mapping from adapter-chosen metric
	// name to duration. Defensively copied by New.
	PlatformSpecific map[string]time.Duration
}

// Breakdown is the immutable decomposed-timing record. Construct via New;
// zero-value Breakdown (not produced by New) is never passed around.
type Breakdown struct {
	totalLatency          time.Duration
	connectionAcquisition time.Duration
	connectionRelease     time.Duration
	serializationTime     time.Duration
	wireTransmitTime      time.Duration
	serverExecutionTime   time.Duration
	serverParseTime       time.Duration
	serverTraversalTime   time.Duration
	serverIndexTime       time.Duration
	serverFetchTime       time.Duration
	wireReceiveTime       time.Duration
	deserializationTime   time.Duration
	clientTraversalTime   time.Duration
	platformSpecific      map[string]time.Duration
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// New constructs a Breakdown from Fields, clamping any negative duration
// to zero and defensively copying the platform-specific map so later
// mutation of the caller's map is never observed.
func New(f Fields) Breakdown {
	cp := make(map[string]time.Duration, len(f.PlatformSpecific))
	for k, v := range f.PlatformSpecific {
		cp[k] = nonNegative(v)
	}
	return Breakdown{
		totalLatency:          nonNegative(f.TotalLatency),
		connectionAcquisition: nonNegative(f.ConnectionAcquisition),
		connectionRelease:     nonNegative(f.ConnectionRelease),
		serializationTime:     nonNegative(f.SerializationTime),
		wireTransmitTime:      nonNegative(f.WireTransmitTime),
		serverExecutionTime:   nonNegative(f.ServerExecutionTime),
		serverParseTime:       nonNegative(f.ServerParseTime),
		serverTraversalTime:   nonNegative(f.ServerTraversalTime),
		serverIndexTime:       nonNegative(f.ServerIndexTime),
		serverFetchTime:       nonNegative(f.ServerFetchTime),
		wireReceiveTime:       nonNegative(f.WireReceiveTime),
		deserializationTime:   nonNegative(f.DeserializationTime),
		clientTraversalTime:   nonNegative(f.ClientTraversalTime),
		platformSpecific:      cp,
	}
}

func (b Breakdown) TotalLatency() time.Duration          { return b.totalLatency }
func (b Breakdown) ConnectionAcquisition() time.Duration { return b.connectionAcquisition }
func (b Breakdown) ConnectionRelease() time.Duration     { return b.connectionRelease }
func (b Breakdown) SerializationTime() time.Duration     { return b.serializationTime }
func (b Breakdown) WireTransmitTime() time.Duration      { return b.wireTransmitTime }
func (b Breakdown) ServerExecutionTime() time.Duration   { return b.serverExecutionTime }
func (b Breakdown) ServerParseTime() time.Duration       { return b.serverParseTime }
func (b Breakdown) ServerTraversalTime() time.Duration   { return b.serverTraversalTime }
func (b Breakdown) ServerIndexTime() time.Duration       { return b.serverIndexTime }
func (b Breakdown) ServerFetchTime() time.Duration       { return b.serverFetchTime }
func (b Breakdown) WireReceiveTime() time.Duration       { return b.wireReceiveTime }
func (b Breakdown) DeserializationTime() time.Duration   { return b.deserializationTime }
func (b Breakdown) ClientTraversalTime() time.Duration   { return b.clientTraversalTime }

// PlatformSpecific returns a defensive copy of the platform-specific map,
// so the caller mutating the returned map never affects this Breakdown.
func (b Breakdown) PlatformSpecific() map[string]time.Duration {
	cp := make(map[string]time.Duration, len(b.platformSpecific))
	for k, v := range b.platformSpecific {
		cp[k] = v
	}
	return cp
}

// TotalOverhead is total_latency - server_fetch_time.
func (b Breakdown) TotalOverhead() time.Duration {
	return b.totalLatency - b.serverFetchTime
}

// TraversalOverhead is server_traversal_time + client_traversal_time - the
// key metric this benchmark exists to quantify.
func (b Breakdown) TraversalOverhead() time.Duration {
	return b.serverTraversalTime + b.clientTraversalTime
}

// NetworkOverhead is wire_transmit_time + wire_receive_time.
func (b Breakdown) NetworkOverhead() time.Duration {
	return b.wireTransmitTime + b.wireReceiveTime
}

// SerializationOverhead is serialization_time + deserialization_time.
func (b Breakdown) SerializationOverhead() time.Duration {
	return b.serializationTime + b.deserializationTime
}

// ConnectionOverhead is connection_acquisition + connection_release.
func (b Breakdown) ConnectionOverhead() time.Duration {
	return b.connectionAcquisition + b.connectionRelease
}

func pct(part, total time.Duration) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// TotalOverheadPercentage is TotalOverhead as a percentage of
// TotalLatency, 0 when TotalLatency is zero.
func (b Breakdown) TotalOverheadPercentage() float64 {
	return pct(b.TotalOverhead(), b.totalLatency)
}

// TraversalPercentage is TraversalOverhead as a percentage of
// TotalLatency, 0 when TotalLatency is zero.
func (b Breakdown) TraversalPercentage() float64 {
	return pct(b.TraversalOverhead(), b.totalLatency)
}

// NetworkPercentage is NetworkOverhead as a percentage of TotalLatency, 0
// when TotalLatency is zero.
func (b Breakdown) NetworkPercentage() float64 {
	return pct(b.NetworkOverhead(), b.totalLatency)
}

// SerializationPercentage is SerializationOverhead as a percentage of
// TotalLatency, 0 when TotalLatency is zero.
func (b Breakdown) SerializationPercentage() float64 {
	return pct(b.SerializationOverhead(), b.totalLatency)
}

// ConnectionPercentage is ConnectionOverhead as a percentage of
// TotalLatency, 0 when TotalLatency is zero.
func (b Breakdown) ConnectionPercentage() float64 {
	return pct(b.ConnectionOverhead(), b.totalLatency)
}

// IsFaithful reports whether total_latency is an upper bound on
// server_execution_time, the quality check described in spec.md §3. It is
// a test/diagnostic helper, never a constructor precondition: adapters may
// legitimately report partial data that violates this when sub-components
// are unmeasured (sentinel zero).
func (b Breakdown) IsFaithful() bool {
	if b.serverExecutionTime == 0 {
		return true
	}
	return b.totalLatency >= b.serverExecutionTime
}
