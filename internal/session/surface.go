package session

import (
	"fmt"

	"github.com/five82/kbchat/internal/kb"
)

// Button labels for the ingestion control.
const (
	LabelBuild   = "Build knowledge base"
	LabelRefresh = "Refresh knowledge base"
	LabelBusy    = "Scraping..."
)

// Status lines shown under the header.
const (
	StatusChecking      = "Checking knowledge-base status..."
	StatusNotFound      = "Knowledge base not found. Start ingestion to build it."
	StatusScraping      = "Scraping in progress..."
	StatusReady         = "Knowledge base ready. The assistant is online."
	StatusStarting      = "Starting ingestion..."
	StatusIngestStarted = "Ingestion started."
)

// Surface is the interactive state the front end applies to its widgets.
type Surface struct {
	Mode          Mode
	ChatEnabled   bool
	IngestEnabled bool
	IngestLabel   string
	Status        string
	StatusIsError bool
	Inline        string // validation message shown next to the ingestion controls
	Progress      *kb.Progress
}

// Describe derives the surface for an observation. It never mutates obs.
func Describe(obs kb.Observation) Surface {
	snap, ok := obs.Snapshot()
	mode := Reconcile(obs)

	switch mode {
	case Scraping:
		s := busySurface(StatusScraping)
		if snap.Progress != nil {
			p := *snap.Progress
			s.Progress = &p
			s.Status = fmt.Sprintf("Scraping in progress: %s pages.", p.String())
		}
		return s
	case Ready:
		return Surface{
			Mode:          Ready,
			ChatEnabled:   true,
			IngestEnabled: true,
			IngestLabel:   LabelRefresh,
			Status:        StatusReady,
		}
	}

	s := Surface{
		Mode:          Offline,
		IngestEnabled: true,
		IngestLabel:   LabelBuild,
		Status:        StatusNotFound,
	}
	if !ok {
		if err := obs.Err(); err != nil {
			s.Status = "Service unavailable: " + kb.UserMessage(err)
			s.StatusIsError = true
		} else {
			s.Status = StatusChecking
		}
	}
	return s
}

func busySurface(status string) Surface {
	return Surface{
		Mode:        Scraping,
		IngestLabel: LabelBusy,
		Status:      status,
	}
}

// Equal compares surfaces by value, including progress.
func (s Surface) Equal(o Surface) bool {
	if s.Mode != o.Mode ||
		s.ChatEnabled != o.ChatEnabled ||
		s.IngestEnabled != o.IngestEnabled ||
		s.IngestLabel != o.IngestLabel ||
		s.Status != o.Status ||
		s.StatusIsError != o.StatusIsError ||
		s.Inline != o.Inline {
		return false
	}
	switch {
	case s.Progress == nil && o.Progress == nil:
		return true
	case s.Progress == nil || o.Progress == nil:
		return false
	}
	return *s.Progress == *o.Progress
}
