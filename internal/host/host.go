// Package host is the file-system side of the editor host: it reads document
// text, resolves languages, writes edited documents and reports, and reads
// git baselines.
package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// ErrDocumentChanged is returned by Insert when the file no longer holds the
// text the comments were computed for.
var ErrDocumentChanged = errors.New("document changed since it was read")

// FileHost treats document ids as paths, relative ones resolved against root.
type FileHost struct {
	root   string
	logger *zap.Logger
}

func NewFileHost(root string, logger *zap.Logger) *FileHost {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileHost{root: root, logger: logger.Named("host")}
}

func (h *FileHost) Path(documentID string) string {
	if filepath.IsAbs(documentID) {
		return documentID
	}
	return filepath.Join(h.root, documentID)
}

func (h *FileHost) Text(documentID string) (string, error) {
	content, err := os.ReadFile(h.Path(documentID))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

func (h *FileHost) LanguageID(documentID string) string {
	return lang.ForPath(documentID).ID
}

// Insert writes text with the suggestions applied and returns the new text.
// It refuses with ErrDocumentChanged when the file was saved again since text
// was read, leaving the newer content alone.
func (h *FileHost) Insert(documentID, text string, language *lang.Language, suggestions []types.CommentSuggestion) (string, error) {
	updated := InsertComments(text, language, suggestions)
	if updated == text {
		return text, nil
	}

	path := h.Path(documentID)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	current, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if string(current) != text {
		return "", fmt.Errorf("%w: %s", ErrDocumentChanged, documentID)
	}
	mode := info.Mode().Perm()

	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	h.logger.Info("inserted comments", zap.String("document", documentID), zap.Int("count", len(suggestions)))
	return updated, nil
}

// WriteFile writes a report next to the watched tree.
func (h *FileHost) WriteFile(name, content string) error {
	if err := os.WriteFile(h.Path(name), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
