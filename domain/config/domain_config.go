package config

// DomainConfig holds tunable domain-level behavior.
// Weight-curve constants are fixed in valueobjects; this covers the knobs
// that genuinely vary between deployments.
type DomainConfig struct {
	// MaxNodesPerGraph caps the session graph size
	MaxNodesPerGraph int

	// MaxEdgesPerGraph caps the session edge count
	MaxEdgesPerGraph int

	// MaxLinksPerExpand caps how many outgoing links a bulk expand materializes
	MaxLinksPerExpand int

	// ExpandConcurrency bounds parallel fetches during a bulk expand
	ExpandConcurrency int
}

// DefaultDomainConfig returns the default configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerGraph:  10000,
		MaxEdgesPerGraph:  50000,
		MaxLinksPerExpand: 50,
		ExpandConcurrency: 4,
	}
}
