// Package combatlog writes a running markdown transcript of an encounter.
// The tracker drives it; operational failures are logged and swallowed so a
// broken log file never interrupts combat.
package combatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Session describes the encounter a new log file opens with.
type Session struct {
	Name      string
	Players   []string
	Creatures []string
	Round     int
}

// UpdateMessage is one creature's outcome from a batched update, rendered
// into a sentence by LogUpdate.
type UpdateMessage struct {
	Name            string
	HP              int
	HasHP           bool
	Temp            bool
	Max             bool
	Statuses        []string
	RemovedStatuses []string
	Saved           bool
	Unconscious     bool
	DC              string
	DCAdd           bool
}

// Logger appends combat events to a markdown file under a configured
// folder. A disabled Logger is a no-op on every method.
type Logger struct {
	enabled bool
	folder  string
	logger  *zap.Logger

	file    *os.File
	path    string
	logging bool
}

// New creates a Logger writing under folder. When enabled is false every
// operation is a no-op and Logging always reports false.
func New(folder string, enabled bool, logger *zap.Logger) *Logger {
	return &Logger{enabled: enabled, folder: folder, logger: logger}
}

// Logging reports whether a session file is currently open.
func (l *Logger) Logging() bool { return l.logging }

// FilePath returns the path of the current session file, or "".
func (l *Logger) FilePath() string { return l.path }

// Start opens a fresh session file named after the encounter and writes the
// roster header.
func (l *Logger) Start(session Session) error {
	if !l.enabled {
		return nil
	}
	l.close()

	name := session.Name
	if name == "" {
		name = "Encounter"
	}
	filename := fmt.Sprintf("%s %s.md", sanitize(name), time.Now().Format("2006-01-02 15.04.05"))
	path := filepath.Join(l.folder, filename)

	if err := os.MkdirAll(l.folder, 0o755); err != nil {
		return fmt.Errorf("combatlog: creating folder %q: %w", l.folder, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("combatlog: opening %q: %w", path, err)
	}
	l.file = file
	l.path = path
	l.logging = true

	l.Log("#", name)
	if len(session.Players) > 0 {
		l.Log("**Players:**", Join(session.Players))
	}
	if len(session.Creatures) > 0 {
		l.Log("**Creatures:**", Join(session.Creatures))
	}
	l.Log("###", fmt.Sprintf("Round %d", session.Round))
	return nil
}

// Resume reopens an existing session file for appending.
func (l *Logger) Resume(path string) error {
	if !l.enabled {
		return nil
	}
	l.close()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("combatlog: reopening %q: %w", path, err)
	}
	l.file = file
	l.path = path
	l.logging = true
	return nil
}

// Stop closes the current session file. The path survives so a snapshot can
// still reference the finished log.
func (l *Logger) Stop() {
	l.close()
	l.logging = false
}

// Log writes parts joined by spaces as one line. Markdown headings are
// passed as a leading part, e.g. Log("###", "Round 2").
func (l *Logger) Log(parts ...string) {
	if !l.logging || l.file == nil {
		return
	}
	line := strings.Join(parts, " ") + "\n"
	if _, err := l.file.WriteString(line); err != nil {
		l.logger.Warn("combat log write failed",
			zap.String("path", l.path),
			zap.Error(err),
		)
	}
}

// LogUpdate renders one sentence per message and writes them as a single
// line.
func (l *Logger) LogUpdate(messages []UpdateMessage) {
	if !l.logging {
		return
	}
	var sentences []string
	for _, msg := range messages {
		if s := renderUpdate(msg); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) > 0 {
		l.Log(strings.Join(sentences, ". ") + ".")
	}
}

func renderUpdate(msg UpdateMessage) string {
	var parts []string
	if msg.HasHP {
		switch {
		case msg.Temp:
			parts = append(parts, fmt.Sprintf("%s gained %d temporary HP", msg.Name, msg.HP))
		case msg.Max && msg.HP < 0:
			s := fmt.Sprintf("%s took %d max HP damage", msg.Name, -msg.HP)
			if msg.Unconscious {
				s += " and died"
			}
			parts = append(parts, s)
		case msg.Max:
			parts = append(parts, fmt.Sprintf("%s gained %d max HP", msg.Name, -msg.HP))
		case msg.HP < 0:
			s := fmt.Sprintf("%s took %d damage", msg.Name, -msg.HP)
			if msg.Unconscious {
				s += " and was knocked unconscious"
			}
			parts = append(parts, s)
		case msg.HP > 0:
			parts = append(parts, fmt.Sprintf("%s was healed for %d HP", msg.Name, msg.HP))
		}
	}
	if len(msg.Statuses) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		} else {
			parts = append(parts, msg.Name)
		}
		if msg.Saved {
			parts = append(parts, "saved against "+Join(msg.Statuses))
		} else {
			parts = append(parts, "took "+Join(msg.Statuses)+" status")
		}
	}
	if msg.DC != "" {
		if len(parts) > 0 {
			parts = append(parts, "and")
		} else {
			parts = append(parts, msg.Name)
		}
		if msg.DCAdd {
			parts = append(parts, "had its DC adjusted by "+msg.DC)
		} else {
			parts = append(parts, "had its DC set to "+msg.DC)
		}
	}
	return strings.Join(parts, " ")
}

// Join renders names as a prose list: "A", "A and B", "A, B and C".
func Join(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func (l *Logger) close() {
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			l.logger.Warn("combat log close failed",
				zap.String("path", l.path),
				zap.Error(err),
			)
		}
		l.file = nil
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
}
