package providers

import "context"

// MockFeedback is the deterministic canned review returned in mock
// mode and used as the offline fallback when a provider call fails.
const MockFeedback = `## Mock AI Review Feedback

### Summary
- (mock) This PR updates files; run with an API key for live feedback.

### Potential Issues
- (mock) No live analysis performed.

### Suggestions
- (mock) Add tests, linting, and CI checks.

### Testing Recommendations
- (mock) Add test cases for new functionality.
`

// Mock implements the Reviewer interface without any network calls.
// It backs MOCK mode in CI runs that have no API key.
type Mock struct{}

// NewMock creates a mock provider.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Review(_ context.Context, _ ReviewRequest) (ReviewResponse, error) {
	return ReviewResponse{Content: MockFeedback}, nil
}
