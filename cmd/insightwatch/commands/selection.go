package commands

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"insightwatch/internal/scope"
)

// The selection scope itself is process-local; each CLI invocation is a new
// process, so the commands layer persists the chosen subject between runs.
// The file is removed on logout together with the token slot.

func restoreSelection() {
	data, err := os.ReadFile(cfg.SelectionPath())
	if err != nil {
		return
	}
	var sub scope.Subject
	if err := json.Unmarshal(data, &sub); err != nil || sub.Key == "" {
		return
	}
	sel.Set(sub)
}

func saveSelection(sub scope.Subject) {
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(cfg.SelectionPath(), data, 0600); err != nil {
		log.Warn().Err(err).Msg("Failed to persist selected subject")
	}
}

func clearSavedSelection() {
	_ = os.Remove(cfg.SelectionPath())
}
