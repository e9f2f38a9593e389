package ai

import (
	"context"
)

// MockProvider is a Generator that never calls a model. It returns the fixed
// mock payload so the pipeline's plumbing can be exercised independent of
// model availability and cost.
type MockProvider struct {
	// ExistingTitle seeds the mock title, mirroring what the real path would
	// have available from the clip record.
	ExistingTitle string
}

// GenerateMetadata returns the fixed mock metadata object
func (p *MockProvider) GenerateMetadata(ctx context.Context, content string) (*ClipMetadata, error) {
	return MockMetadata(p.ExistingTitle), nil
}

var _ Generator = (*MockProvider)(nil)
var _ Generator = (*OpenAIProvider)(nil)
