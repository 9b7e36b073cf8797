package domain

// SeenKey returns the persistence key for a kind's seen set
func SeenKey(kind Kind) string {
	return "seenIdentifiers_" + kind.String()
}

// Store handles local persistence (BoltDB + memory).
type Store interface {
	SeenSetStore

	// Reset forgets every reviewed item of a kind
	Reset(kind Kind) error

	Close() error
}
