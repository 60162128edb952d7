package domain

// Span names emitted by the artifact cache.
const (
	SpanResolve = "percolate.resolve"
	SpanCompile = "percolate.compile"
	SpanInline  = "percolate.inline"
)

// Span attribute names emitted by the artifact cache.
const (
	SpanAttrSource   = "percolate.source"
	SpanAttrOutcome  = "percolate.outcome"
	SpanAttrArtifact = "percolate.artifact"
	SpanAttrDigest   = "percolate.digest"
	SpanAttrBytesIn  = "percolate.bytes_in"
	SpanAttrBytesOut = "percolate.bytes_out"
)
