// Package generation runs Terraform generations for in-memory chat
// sessions and saves their results as projects.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"

	"terraai/internal/config"
	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/services"
	domainllm "terraai/internal/domain/services/llm"
	"terraai/internal/metrics"
	"terraai/internal/service/blueprint"
	"terraai/internal/service/llm"
)

// DefaultTitle is the title of a new chat.
const DefaultTitle = models.DefaultTitle

// Gateway starts LLM completions.
type Gateway interface {
	Stream(ctx context.Context, history llm.History) (<-chan domainllm.StreamChunk, error)
	ProviderName() string
}

// Config holds session timing settings.
type Config struct {
	IdleSaveDelay time.Duration
	SessionTTL    time.Duration
	SaveTimeout   time.Duration
}

// ConfigFrom maps the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		IdleSaveDelay: cfg.IdleSaveDelay,
		SessionTTL:    cfg.SessionTTL,
		SaveTimeout:   30 * time.Second,
	}
}

// Manager owns all sessions of the process.
type Manager struct {
	gateway  Gateway
	projects services.ProjectService
	registry *mstream.Registry
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager creates a session manager. The registry's cleanup loop is
// owned by the caller.
func NewManager(
	gateway Gateway,
	projects services.ProjectService,
	registry *mstream.Registry,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 30 * time.Second
	}
	return &Manager{
		gateway:  gateway,
		projects: projects,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

var _ services.SessionService = (*Manager)(nil)

// Create opens a new session. With fromProjectID the session continues
// that saved project; later idle-saves update it instead of creating one.
func (m *Manager) Create(ctx context.Context, userID, fromProjectID string) (*models.Session, error) {
	now := m.now()
	sess := newSession(uuid.NewString(), userID, now)

	if fromProjectID != "" {
		project, err := m.projects.GetProject(ctx, fromProjectID, userID)
		if err != nil {
			return nil, err
		}
		sess.title = project.Title
		sess.projectID = project.ID
		sess.state = blueprint.State{
			Files:    project.Files.Clone(),
			Messages: append([]models.ConversationMessage(nil), project.Messages...),
		}
		if sess.state.Files == nil {
			sess.state.Files = models.FileSet{}
		}
	}

	m.mu.Lock()
	m.sweepLocked(now)
	m.sessions[sess.id] = sess
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.Debug("session created",
		"session_id", sess.id,
		"user_id", userID,
		"project_id", fromProjectID,
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

func (m *Manager) Get(ctx context.Context, userID, id string) (*models.Session, error) {
	sess, err := m.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// Rename changes the title used by the next idle-save.
func (m *Manager) Rename(ctx context.Context, userID, id, title string) (*models.Session, error) {
	title = strings.TrimSpace(title)
	err := validation.Validate(title,
		validation.Required,
		validation.RuneLength(1, config.MaxProjectTitleLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	sess, err := m.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.title = title
	sess.updatedAt = m.now()
	return sess.snapshotLocked(), nil
}

func (m *Manager) Reset(ctx context.Context, userID, id string) (*models.Session, error) {
	sess, err := m.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	m.cancelStreamLocked(sess)
	sess.resetLocked(m.now())
	m.logger.Info("session reset", "session_id", id, "user_id", userID)
	return sess.snapshotLocked(), nil
}

// Discard cancels any work and forgets the session.
func (m *Manager) Discard(ctx context.Context, userID, id string) error {
	sess, err := m.lookup(userID, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	m.cancelStreamLocked(sess)
	sess.resetLocked(m.now())
	sess.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.Debug("session discarded", "session_id", id, "user_id", userID)
	return nil
}

// ImportArchive replaces the session's files with the contents of a zip.
func (m *Manager) ImportArchive(ctx context.Context, userID, id string, data []byte) (*services.ArchiveImport, error) {
	if len(data) > config.MaxArchiveSize {
		return nil, fmt.Errorf("%w: archive exceeds %d bytes", domain.ErrValidation, config.MaxArchiveSize)
	}

	result, err := blueprint.ReadArchive(data, config.MaxFilesPerProject)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: archive contains no usable files", domain.ErrValidation)
	}

	sess, err := m.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.streamID != "" {
		return nil, &domain.ConflictError{
			Message:      "a generation is running for this session",
			ResourceType: "session",
			ResourceID:   id,
		}
	}

	sess.state = sess.state.WithFiles(result.Files)
	sess.updatedAt = m.now()

	m.logger.Info("archive imported",
		"session_id", id,
		"files", len(result.Files),
		"skipped", len(result.Skipped),
	)

	return &services.ArchiveImport{Session: sess.snapshotLocked(), Skipped: result.Skipped}, nil
}

// Validate runs the structural Terraform check over every file.
func (m *Manager) Validate(ctx context.Context, userID, id string) (map[string]models.FileValidation, error) {
	sess, err := m.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	files := sess.state.Files.Clone()
	sess.mu.Unlock()
	return blueprint.ValidateAll(files), nil
}

// lookup finds a session owned by userID. Sessions of other users are
// reported as missing.
func (m *Manager) lookup(userID, id string) (*session, error) {
	now := m.now()

	m.mu.Lock()
	m.sweepLocked(now)
	sess, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok || sess.userID != userID {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	sess.mu.Lock()
	sess.lastActive = now
	sess.mu.Unlock()
	return sess, nil
}

// sweepLocked drops idle sessions past their TTL. Callers must hold m.mu.
func (m *Manager) sweepLocked(now time.Time) {
	if m.cfg.SessionTTL <= 0 {
		return
	}
	for id, sess := range m.sessions {
		sess.mu.Lock()
		expired := sess.streamID == "" && sess.pending == nil && now.Sub(sess.lastActive) > m.cfg.SessionTTL
		sess.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			m.logger.Debug("session expired", "session_id", id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
}

// cancelStreamLocked cancels the running generation, if any. Callers must
// hold sess.mu.
func (m *Manager) cancelStreamLocked(sess *session) {
	if sess.streamID == "" {
		return
	}
	if stream := m.registry.Get(sess.streamID); stream != nil {
		stream.Cancel()
	}
	sess.streamID = ""
}
