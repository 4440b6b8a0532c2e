package test

import (
	"math/rand"
	"sync"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomActorID returns an identifier like "buyer-k3x9q2" for role.
func RandomActorID(role string) string {
	buf := make([]byte, 6+randomIntn(7))
	for i := range buf {
		buf[i] = idAlphabet[randomIntn(len(idAlphabet))]
	}
	return role + "-" + string(buf)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
