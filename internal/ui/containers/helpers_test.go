package containers

import (
	"context"
	"sync"
	"testing"

	"billed/internal/ui/dom"

	"github.com/stretchr/testify/require"
)

// navRecorder records the paths a controller navigates to.
type navRecorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (n *navRecorder) OnNavigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return n.err
}

func (n *navRecorder) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// errRecorder collects the errors passed to OnError.
type errRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *errRecorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func mount(t *testing.T, markup string, err error) *dom.Document {
	t.Helper()
	require.NoError(t, err)
	doc := dom.NewDocument()
	require.NoError(t, doc.CreateRoot().SetInnerHTML(markup))
	return doc
}

func fill(t *testing.T, doc *dom.Document, values map[string]string) {
	t.Helper()
	for testID, v := range values {
		el, err := doc.GetByTestID(testID)
		require.NoError(t, err)
		require.NoError(t, dom.FireChange(context.Background(), el, v))
	}
}
