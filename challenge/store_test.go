package challenge

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore()

	keyAuth := "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ.nP1qzpXGymHBrUEepNY9HCsQk7K8KhOypzEt62jcerQ"
	store.Put("evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ", keyAuth)

	got, err := store.Get("evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ")
	require.NoError(t, err)
	// The staged value must come back byte for byte.
	assert.Equal(t, keyAuth, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreGetUnknownToken(t *testing.T) {
	store := NewStore()

	_, err := store.Get("never-staged")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorePutOverwrites(t *testing.T) {
	store := NewStore()

	store.Put("token", "first.value")
	store.Put("token", "second.value")

	got, err := store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "second.value", got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		token := fmt.Sprintf("token-%d", i)
		go func() {
			defer wg.Done()
			store.Put(token, token+".auth")
		}()
		go func() {
			defer wg.Done()
			// Reads may race with the write and legitimately miss.
			if got, err := store.Get(token); err == nil {
				assert.Equal(t, token+".auth", got)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}
