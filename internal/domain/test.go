package domain

// Protocol identifies which test execution back-end owns a binary.
type Protocol int

const (
	// ProtocolVSTest is the session-oriented vstest console runner.
	// Its console session is exclusive: one discovery or run at a time.
	ProtocolVSTest Protocol = iota
	// ProtocolMTP is Microsoft.Testing.Platform, where the test binary
	// is its own runner and sessions are independent per binary.
	ProtocolMTP
)

// String returns a short human-readable protocol name.
func (p Protocol) String() string {
	if p == ProtocolMTP {
		return "mtp"
	}
	return "vstest"
}

// DiscoveredTest is one test case as reported by a discovery client.
// Records are immutable; the tree builder consumes them once per cycle.
type DiscoveredTest struct {
	ID          string // stable identifier used to address the test in a run
	FullName    string // fully-qualified name, may embed an argument list
	DisplayName string // framework-reported display name, may diverge from FullName
	SourceFile  string
	SourceLine  int
	Binary      string // compiled test binary the case lives in
	Protocol    Protocol
}

// RunItem addresses one test case in a run request.
type RunItem struct {
	ID          string
	DisplayName string
	Binary      string
	Protocol    Protocol
}

// RunRequest is a flat batch of test cases submitted together.
// The run orchestrator partitions it by (binary, protocol) internally.
type RunRequest struct {
	Items []RunItem
}
