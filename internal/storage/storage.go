// Package storage is the durable local key-value store the engine persists
// client-owned state into: the cart under "cart" and the bearer token under
// "access_token". It mirrors the browser localStorage contract: string keys,
// opaque values, synchronous writes.
package storage

//go:generate mockgen -source=storage.go -destination=../mock/storage/storage_mock.go -package=mock
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Clear() error
}

const (
	KeyCart        = "cart"
	KeyAccessToken = "access_token"
)
