package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"

	"s3gateway/pkg/utils"
)

// Session is one in-flight folder archive request.
type Session struct {
	Folder      string
	ID          string
	StagingDir  string
	ArchivePath string

	aborted atomic.Bool
	ended   atomic.Int32
}

// MarkAborted records that the client went away before the response completed.
func (s *Session) MarkAborted() {
	s.aborted.Store(true)
}

func (s *Session) Aborted() bool {
	return s.aborted.Load()
}

// Stager allocates and removes session working areas under Root.
type Stager struct {
	Root   string
	Logger *slog.Logger
}

func NewStager(root string, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{Root: root, Logger: logger}
}

// Begin creates an empty staging directory for folder.
func (st *Stager) Begin(folder string) (*Session, error) {
	id := uuid.NewString()
	session := &Session{
		Folder:      folder,
		ID:          id,
		StagingDir:  filepath.Join(st.Root, id),
		ArchivePath: filepath.Join(st.Root, id+".zip"),
	}

	if err := os.MkdirAll(st.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root %s: %w", st.Root, err)
	}
	if err := utils.CleanupTempDir(session.StagingDir); err != nil {
		return nil, err
	}
	if err := os.Mkdir(session.StagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	st.Logger.Debug("staging session started", "session", id, "folder", folder, "dir", session.StagingDir)
	return session, nil
}

// End removes the session's staging directory and archive if they exist.
// Failures are logged and never returned.
func (st *Stager) End(session *Session) {
	if session == nil {
		return
	}

	calls := session.ended.Add(1)

	if err := utils.CleanupTempDir(session.StagingDir); err != nil {
		st.Logger.Error("failed to remove staging directory", "session", session.ID, "error", err)
	}
	if err := utils.CleanupTempFile(session.ArchivePath); err != nil {
		st.Logger.Error("failed to remove archive", "session", session.ID, "error", err)
	}

	if calls == 1 {
		st.Logger.Debug("staging session cleaned up", "session", session.ID, "aborted", session.Aborted())
	}
}
