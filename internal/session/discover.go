package session

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// transcriptRef is a discovered transcript file before parsing.
type transcriptRef struct {
	SessionID string
	Engine    models.Engine
	Path      string
	ModTime   time.Time
}

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// sessionIDFromPath derives a stable session ID from a transcript file
// name. Codex rollout files embed the UUID after a timestamp prefix
// (rollout-YYYY-MM-DDTHH-MM-SS-<uuid>.jsonl); everything else names the
// file after the session directly.
func sessionIDFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if id := uuidRe.FindString(base); id != "" {
		return id
	}
	return base
}

// discover walks an engine's transcript directory and returns all
// transcript files, newest first left to the caller. Missing
// directories are not an error: the engine may simply not be installed.
func discover(dir string, engine models.Engine) []transcriptRef {
	if dir == "" {
		return nil
	}

	var refs []transcriptRef

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return nil // unreadable entry, keep walking
		}
		if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		refs = append(refs, transcriptRef{
			SessionID: sessionIDFromPath(path),
			Engine:    engine,
			Path:      path,
			ModTime:   info.ModTime(),
		})
		return nil
	})

	return refs
}

// readTranscript dispatches to the engine-appropriate parser.
func readTranscript(path string, engine models.Engine) ([]*models.SessionMessage, error) {
	if engine == models.EngineCodex {
		return readCodexTranscript(path)
	}
	return readGenericTranscript(path)
}
