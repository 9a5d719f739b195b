package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
)

// LimitMessage is sent with limit_reached.
const LimitMessage = "Daily project limit reached. Upgrade your plan to save more projects today."

// Generate appends the prompt, streams the model's answer as snapshot
// events and, on success, schedules the idle-save. It blocks until the
// turn has ended (the idle-save ran or was superseded) or ctx is done.
func (m *Manager) Generate(ctx context.Context, userID, id, prompt string, fn services.EventSink) error {
	prompt = strings.TrimSpace(prompt)
	err := validation.Validate(prompt,
		validation.Required,
		validation.RuneLength(1, config.MaxPromptLength),
	)
	if err != nil {
		return fmt.Errorf("%w: prompt: %v", domain.ErrValidation, err)
	}

	sess, err := m.lookup(userID, id)
	if err != nil {
		return err
	}

	f := newFeed()
	out := &sink{fn: fn}
	f.attach(out)
	defer f.detach(out)

	sess.mu.Lock()
	if sess.streamID != "" {
		sess.mu.Unlock()
		return &domain.ConflictError{
			Message:      "a generation is already running for this session",
			ResourceType: "session",
			ResourceID:   id,
		}
	}
	// a new prompt supersedes the previous turn's idle-save
	sess.cancelSaveLocked()

	streamID := uuid.NewString()
	sess.streamID = streamID
	sess.feed = f
	sess.status = models.SessionStreaming
	sess.state = sess.state.WithPrompt(prompt)
	sess.history = sess.history.WithUser(prompt)
	sess.updatedAt = m.now()
	epoch := sess.epoch
	first := sess.snapshotLocked()
	sess.mu.Unlock()

	f.send(services.GenerationEvent{Type: services.EventSnapshot, Data: first})

	stream := mstream.NewStream(
		streamID,
		func(streamCtx context.Context, _ func(mstream.Event)) error {
			m.run(streamCtx, sess, streamID, epoch, f)
			return nil
		},
	)
	m.registry.Register(stream)
	stream.Start()

	m.logger.Info("generation started",
		"session_id", id,
		"user_id", userID,
		"stream_id", streamID,
		"provider", m.gateway.ProviderName(),
	)

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watch attaches to the session's current turn, as a client does after
// losing its generate connection. The current session goes out first as
// a snapshot, then the turn's live events until it ends or ctx is done.
// With no turn in progress only the snapshot is sent.
func (m *Manager) Watch(ctx context.Context, userID, id string, fn services.EventSink) error {
	sess, err := m.lookup(userID, id)
	if err != nil {
		return err
	}

	out := &sink{fn: fn}

	// Holding out.mu until the catch-up is written keeps live events
	// behind it.
	out.mu.Lock()
	sess.mu.Lock()
	snap := sess.snapshotLocked()
	f := sess.feed
	if f != nil {
		f.attach(out)
	}
	sess.mu.Unlock()
	out.sendLocked(services.GenerationEvent{Type: services.EventSnapshot, Data: snap})
	out.mu.Unlock()

	if f == nil {
		return nil
	}
	defer f.detach(out)

	m.logger.Debug("client reattached", "session_id", id, "user_id", userID)

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the stream's work function body.
func (m *Manager) run(ctx context.Context, sess *session, streamID string, epoch uint64, f *feed) {
	provider := m.gateway.ProviderName()
	start := time.Now()

	sess.mu.Lock()
	history := sess.history
	sess.mu.Unlock()

	var text strings.Builder
	chunks, err := m.gateway.Stream(ctx, history)
	if err == nil {
		err = m.consume(ctx, sess, streamID, epoch, chunks, &text, f)
	}

	metrics.GenerationDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	sess.mu.Lock()
	if sess.streamID != streamID || sess.epoch != epoch {
		// reset or discarded while streaming
		sess.mu.Unlock()
		metrics.GenerationsTotal.WithLabelValues(provider, "canceled").Inc()
		m.logger.Info("generation canceled", "session_id", sess.id, "stream_id", streamID)
		m.endTurn(sess, f)
		return
	}

	sess.streamID = ""
	sess.updatedAt = m.now()

	if err != nil {
		sess.state = sess.state.Fail()
		sess.status = models.SessionError
		snap := sess.snapshotLocked()
		sess.mu.Unlock()

		metrics.GenerationsTotal.WithLabelValues(provider, "error").Inc()
		m.logger.Error("generation failed",
			"session_id", sess.id,
			"stream_id", streamID,
			"provider", provider,
			"error", err,
		)
		f.send(services.GenerationEvent{
			Type: services.EventError,
			Data: &services.ErrorPayload{Message: blueprint.ErrorMessage, Session: snap},
		})
		m.endTurn(sess, f)
		return
	}

	full := text.String()
	sess.state = sess.state.Apply(full, false)
	sess.history = sess.history.WithAssistant(full)
	sess.status = models.SessionIdle
	snap := sess.snapshotLocked()
	save := m.scheduleSaveLocked(sess, f)
	sess.mu.Unlock()

	metrics.GenerationsTotal.WithLabelValues(provider, "success").Inc()
	m.logger.Info("generation completed",
		"session_id", sess.id,
		"stream_id", streamID,
		"chars", len(full),
		"files", len(snap.Files),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	f.send(services.GenerationEvent{Type: services.EventDone, Data: snap})

	go func() {
		<-save
		m.endTurn(sess, f)
	}()
}

// endTurn detaches f from the session and releases its clients.
func (m *Manager) endTurn(sess *session, f *feed) {
	sess.mu.Lock()
	if sess.feed == f {
		sess.feed = nil
	}
	sess.mu.Unlock()
	f.end()
}

// consume applies chunks to the session until the channel closes.
func (m *Manager) consume(
	ctx context.Context,
	sess *session,
	streamID string,
	epoch uint64,
	chunks <-chan domainllm.StreamChunk,
	text *strings.Builder,
	f *feed,
) error {
	defer func() {
		// let producers blocked on send finish
		go func() {
			for range chunks {
			}
		}()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				return nil
			}
			if chunk.Err != nil {
				return chunk.Err
			}
			text.WriteString(chunk.Text)

			sess.mu.Lock()
			if sess.streamID != streamID || sess.epoch != epoch {
				sess.mu.Unlock()
				return context.Canceled
			}
			sess.state = sess.state.Apply(text.String(), true)
			snap := sess.snapshotLocked()
			sess.mu.Unlock()

			f.send(services.GenerationEvent{Type: services.EventSnapshot, Data: snap})
		}
	}
}

// scheduleSaveLocked arms the idle-save timer. Callers must hold sess.mu.
func (m *Manager) scheduleSaveLocked(sess *session, f *feed) <-chan struct{} {
	sess.cancelSaveLocked()
	seq := sess.saveSeq
	finished := make(chan struct{})

	timer := time.AfterFunc(m.cfg.IdleSaveDelay, func() {
		defer close(finished)
		m.idleSave(sess, seq, f)
	})
	sess.pending = &pendingSave{timer: timer, finished: finished}
	return finished
}

// idleSave persists the session: the first save creates a project
// (subject to the daily quota), later ones update it. Failures other than
// the quota are logged and not shown.
func (m *Manager) idleSave(sess *session, seq uint64, f *feed) {
	sess.mu.Lock()
	if sess.saveSeq != seq || sess.streamID != "" {
		sess.mu.Unlock()
		return
	}
	sess.pending = nil
	epoch := sess.epoch
	userID := sess.userID
	projectID := sess.projectID
	title := sess.title
	files := sess.state.Files.Clone()
	messages := append([]models.ConversationMessage(nil), sess.state.Messages...)
	sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SaveTimeout)
	defer cancel()

	if projectID != "" {
		_, err := m.projects.UpdateProject(ctx, projectID, userID, &services.UpdateProjectRequest{
			Title:    &title,
			Files:    files,
			Messages: messages,
		})
		switch {
		case err == nil:
			metrics.ProjectSavesTotal.WithLabelValues("update", "success").Inc()
			m.afterSave(sess, epoch, projectID, f)
			return
		case errors.Is(err, domain.ErrNotFound):
			// deleted elsewhere; save as a new project
			m.logger.Info("linked project gone, creating a new one",
				"session_id", sess.id,
				"project_id", projectID,
			)
		default:
			metrics.ProjectSavesTotal.WithLabelValues("update", "error").Inc()
			m.logger.Error("idle-save update failed",
				"session_id", sess.id,
				"project_id", projectID,
				"error", err,
			)
			return
		}
	}

	project, err := m.projects.CreateProject(ctx, &services.CreateProjectRequest{
		UserID:   userID,
		Title:    title,
		Files:    files,
		Messages: messages,
	})
	if err != nil {
		var quotaErr *domain.QuotaExceededError
		if errors.As(err, &quotaErr) {
			metrics.ProjectSavesTotal.WithLabelValues("create", "quota_exceeded").Inc()
			m.limitReached(sess, seq, epoch, quotaErr, f)
			return
		}
		metrics.ProjectSavesTotal.WithLabelValues("create", "error").Inc()
		m.logger.Error("idle-save create failed",
			"session_id", sess.id,
			"user_id", userID,
			"error", err,
		)
		return
	}

	metrics.ProjectSavesTotal.WithLabelValues("create", "success").Inc()
	m.afterSave(sess, epoch, project.ID, f)
}

func (m *Manager) afterSave(sess *session, epoch uint64, projectID string, f *feed) {
	sess.mu.Lock()
	if sess.epoch != epoch {
		sess.mu.Unlock()
		return
	}
	sess.projectID = projectID
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	m.logger.Info("session saved", "session_id", sess.id, "project_id", projectID)
	f.send(services.GenerationEvent{
		Type: services.EventSaved,
		Data: &services.SavedPayload{ProjectID: projectID, Session: snap},
	})
}

// limitReached resets the chat after the quota refused the first save.
func (m *Manager) limitReached(sess *session, seq, epoch uint64, quotaErr *domain.QuotaExceededError, f *feed) {
	sess.mu.Lock()
	if sess.epoch != epoch || sess.saveSeq != seq {
		sess.mu.Unlock()
		return
	}
	sess.resetLocked(m.now())
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	m.logger.Info("daily project limit reached, session reset",
		"session_id", sess.id,
		"plan", quotaErr.Plan,
		"limit", quotaErr.Limit,
	)
	f.send(services.GenerationEvent{
		Type: services.EventLimitReached,
		Data: &services.LimitPayload{
			Message: LimitMessage,
			Plan:    quotaErr.Plan,
			Limit:   quotaErr.Limit,
			Session: snap,
		},
	})
}
