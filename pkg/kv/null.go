package kv

import "context"

// NullStore is a no-op store that never keeps anything.
// Every Load against it falls back to the seed diagram.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always reports a missing key.
func (s *NullStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (s *NullStore) Set(context.Context, string, []byte) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(context.Context, string) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

var _ Store = (*NullStore)(nil)
