package executor

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// inflightGuard rejects overlapping bet attempts for the same account.
// Two concurrent submissions from one wallet would race on the account
// nonce and allowance, so the second attempt fails fast instead.
type inflightGuard struct {
	mu       sync.Mutex
	inFlight map[common.Address]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{inFlight: make(map[common.Address]struct{})}
}

// acquire marks account as having a bet in flight. ok is false when one is
// already running; the returned release function is safe to call once the
// attempt finishes, whatever its outcome.
func (g *inflightGuard) acquire(account common.Address) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[account]; held {
		return nil, false
	}
	g.inFlight[account] = struct{}{}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.inFlight, account)
	}, true
}
