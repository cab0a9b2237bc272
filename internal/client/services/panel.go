package services

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/client"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
)

// Panel is the result slot of one data panel. Every operation takes a
// sequence number from begin; a completion carrying an older number than the
// panel's latest is dropped, so a slow response can never overwrite a newer
// one.
type Panel[T any] struct {
	mu     sync.Mutex
	seq    uint64
	result models.OperationResult[T]
}

// Snapshot returns a copy of the current result.
func (p *Panel[T]) Snapshot() models.OperationResult[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// begin clears the previous error and data and sets the in-flight status.
func (p *Panel[T]) begin(status string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.result = models.OperationResult[T]{Status: status}
	return p.seq
}

// finish stores data with a terminal status. It reports false when the
// completion was stale and dropped.
func (p *Panel[T]) finish(seq uint64, data T, status string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return false
	}
	p.result = models.OperationResult[T]{Status: status, Data: data, HasData: true}
	return true
}

// fail records err. Unauthorized errors only clear the status: the forced
// logout is the operator's signal.
func (p *Panel[T]) fail(seq uint64, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return false
	}
	p.result = models.OperationResult[T]{}
	if !errors.Is(err, client.ErrUnauthorized) {
		p.result.Error = client.Describe(err)
	}
	return true
}

// reject records a local validation failure.
func (p *Panel[T]) reject(seq uint64, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return
	}
	p.result = models.OperationResult[T]{Error: msg}
}
