package session

import "github.com/five82/kbchat/internal/kb"

// Mode is the client's locally derived interactive state.
type Mode int

const (
	// Offline is the initial mode: no snapshot yet, no knowledge base, or
	// the last fetch failed.
	Offline Mode = iota
	// Scraping means an ingestion job is running.
	Scraping
	// Ready means the knowledge base is built and chat is permitted.
	Ready
)

func (m Mode) String() string {
	switch m {
	case Offline:
		return "offline"
	case Scraping:
		return "scraping"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Reconcile maps an observation to the mode it implies. Scraping dominates
// when the service reports both flags.
func Reconcile(obs kb.Observation) Mode {
	snap, ok := obs.Snapshot()
	switch {
	case !ok:
		return Offline
	case snap.ScrapingInProgress:
		return Scraping
	case snap.ChatbotReady:
		return Ready
	default:
		return Offline
	}
}
