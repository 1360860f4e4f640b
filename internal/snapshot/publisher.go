package snapshot

import (
	"encoding/json"
	"log"
	"time"

	"github.com/kangchainx/puredo/internal/task"
)

// Publisher externalizes the pending-task snapshot for the widget surface.
// It is invoked after every repository mutation, including reloads.
type Publisher struct {
	blobs BlobStore
	now   func() time.Time
}

func NewPublisher(blobs BlobStore) *Publisher {
	return &Publisher{blobs: blobs, now: time.Now}
}

// Publish writes the snapshot for the given working set, wholesale, under
// the well-known key. Failures are logged and swallowed: the mutation that
// triggered the publish has already committed and must not be rolled back,
// and the reader keeps the previous blob until the next successful publish.
// An empty working set still publishes, so the reader converges to blank
// instead of holding a stale list.
func (p *Publisher) Publish(tasks []*task.Task) {
	snap := Build(tasks, p.now())

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[snapshot] encode: %v", err)
		return
	}
	if err := p.blobs.Set(Key, data); err != nil {
		log.Printf("[snapshot] publish: %v", err)
	}
}
