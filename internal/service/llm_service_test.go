package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMService_ConcurrentTokenAccess(t *testing.T) {
	svc := &LLMService{accessToken: "initial"}

	// Page workers read the token while a 401 handler rewrites it; run both
	// sides concurrently so the race detector can see the guard.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if i%2 == 0 {
					svc.setToken(fmt.Sprintf("token-%d-%d", i, j))
				} else {
					assert.NotEmpty(t, svc.currentToken())
				}
			}
		}()
	}
	wg.Wait()

	assert.NotEmpty(t, svc.currentToken())
}

func TestStripMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripMarkdownFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripMarkdownFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripMarkdownFences(`{"a":1}`))
}
