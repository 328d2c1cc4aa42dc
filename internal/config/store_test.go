package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 热加载替换配置时，请求路径上的并发读取必须始终拿到完整的快照
func TestStoreConcurrentReplace(t *testing.T) {
	store := NewStore(&Config{JWT: JWTConfig{Secret: "alpha"}})

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				secret := store.Current().JWT.Secret
				if secret != "alpha" && secret != "beta" {
					t.Errorf("torn config read: %q", secret)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		secret := "alpha"
		if i%2 == 0 {
			secret = "beta"
		}
		store.Replace(&Config{JWT: JWTConfig{Secret: secret}})
	}
	close(stop)
	wg.Wait()

	assert.Contains(t, []string{"alpha", "beta"}, store.Current().JWT.Secret)
}
