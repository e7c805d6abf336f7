package caption

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"
)

// mockCaptions is the fixed pool the mock provider draws from. The
// entries are themed after the app's accessibility demo content
var mockCaptions = []string{
	"A person is explaining web accessibility standards in a well-lit room with clear audio.",
	"The instructor demonstrates ARIA attributes using code examples displayed on screen.",
	"Tutorial showing keyboard navigation techniques for screen readers and assistive technologies.",
	"Video demonstration of WCAG 2.1 compliance testing tools and accessibility evaluation methods.",
	"Speaker discusses the importance of semantic HTML for screen reader compatibility.",
	"Presentation covering color contrast requirements and visual accessibility guidelines.",
	"Developer walking through accessible form design with proper label associations.",
	"Tutorial on implementing skip navigation links and landmark regions for better accessibility.",
	"Demonstration of how to test websites using popular screen reader software like NVDA and JAWS.",
	"Expert explaining the differences between WCAG levels A, AA, and AAA conformance.",
}

// MockProvider returns a pseudo-random canned caption per call. It
// exists to keep the upload pipeline usable during development without
// heavyweight model dependencies.
type MockProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMock() *MockProvider {
	return &MockProvider{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Generate(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: video file unreadable, %v", ErrGeneration, err)
	}

	m.mu.Lock()
	c := mockCaptions[m.rng.Intn(len(mockCaptions))]
	m.mu.Unlock()

	return c, nil
}
