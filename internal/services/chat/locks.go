package chat

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// messageLocks serializes read-modify-write mutations on the same message.
// Two concurrent reaction toggles on one message must not interleave
// between the read and the write, or one user's toggle silently vanishes.
type messageLocks struct {
	shards [lockShards]sync.Mutex
}

// lock acquires the shard for messageID and returns the unlock func.
func (l *messageLocks) lock(messageID string) func() {
	h := fnv.New32a()
	h.Write([]byte(messageID))
	mu := &l.shards[h.Sum32()%lockShards]
	mu.Lock()
	return mu.Unlock
}
