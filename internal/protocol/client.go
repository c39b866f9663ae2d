package protocol

import (
	"context"

	"lazydotnet/internal/config"
	"lazydotnet/internal/domain"
)

// Client discovers and runs the tests exposed by one compiled test binary.
// Run streams results into the provided channel in the order the runner
// reports them; the channel is owned by the caller and never closed here.
type Client interface {
	Discover(ctx context.Context, binary string) ([]domain.DiscoveredTest, error)
	Run(ctx context.Context, binary string, items []domain.RunItem, results chan<- domain.TestRunResult) error
}

// Clients bundles one client per protocol.
type Clients struct {
	VSTest Client
	MTP    Client
}

// NewClients creates the protocol clients for a workspace
func NewClients(cfg *config.Config) *Clients {
	return &Clients{
		VSTest: NewVSTestClient(cfg),
		MTP:    NewMTPClient(cfg),
	}
}

// For returns the client owning the given protocol.
func (c *Clients) For(p domain.Protocol) Client {
	if p == domain.ProtocolMTP {
		return c.MTP
	}
	return c.VSTest
}
