package cart

import "sync"

// keyedMutex sérialise les mutations par client : deux requêtes
// concurrentes sur le même panier ne peuvent pas contourner la limite
// de stock entre la lecture et l'écriture d'une ligne.
// Une entrée par client vu par le processus, jamais retirée : la table
// croît avec la base clients, pas avec le trafic.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}
