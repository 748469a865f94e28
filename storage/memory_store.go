package storage

import (
	"context"
	"slices"
	"sync"
)

const MemoryStoreIdentifier = "memory"

// MemoryStore keeps objects in memory. It backs dry runs and tests.
type MemoryStore struct {
	objects map[string][]byte
	// keys in put order, including overwrites
	puts []string
	// failures keyed by object key, returned instead of storing
	failures map[string]error
	lock     sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string][]byte),
		failures: make(map[string]error),
	}
}

func (s *MemoryStore) Identifier() string {
	return MemoryStoreIdentifier
}

// FailOn makes every put to key fail with err
func (s *MemoryStore) FailOn(key string, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures[key] = err
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return newError(0, "", err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err, ok := s.failures[key]; ok {
		return err
	}
	s.objects[objectPath(bucket, key)] = slices.Clone(data)
	s.puts = append(s.puts, objectPath(bucket, key))
	return nil
}

// Get returns the object stored at key in bucket
func (s *MemoryStore) Get(bucket, key string) ([]byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, ok := s.objects[objectPath(bucket, key)]
	return data, ok
}

// Puts returns bucket/key of every successful put, in order
func (s *MemoryStore) Puts() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return slices.Clone(s.puts)
}

func objectPath(bucket, key string) string {
	return bucket + "/" + key
}
