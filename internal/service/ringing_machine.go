package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/bedside/internal/audio"
	"github.com/alexanderramin/bedside/internal/domain"
	"github.com/alexanderramin/bedside/internal/repository"
	"github.com/alexanderramin/bedside/internal/scheduler"
)

const (
	DefaultSnoozeMinutes = 9
	DefaultMissedGrace   = time.Minute
)

type RingingConfig struct {
	SoundPath     string
	Ramp          audio.Ramp
	SnoozeMinutes int
	// MissedGrace is how far back a tick looks for triggers it has not seen,
	// covering a late first tick or a stalled ticker. It never drops below
	// two TickIntervals, so regular ticks cannot step over a trigger.
	MissedGrace  time.Duration
	TickInterval time.Duration
	Night        domain.NightWindow
}

// View is the read-only snapshot handed to UIs.
type View struct {
	At          time.Time
	Phase       domain.RingPhase
	AlarmID     *int64
	Label       string
	SnoozeUntil *time.Time
	Next        *domain.NextAlarm
	UntilNext   time.Duration
	Audio       audio.Status
	Night       bool
}

// RingingMachine owns the Idle/Ringing/Snoozed state and drives the audio
// player on transitions. All methods are safe for concurrent use.
type RingingMachine struct {
	alarms repository.AlarmRepo
	player AudioPlayer
	cfg    RingingConfig
	log    *slog.Logger

	mu       sync.Mutex
	state    domain.RingingState
	lastTick time.Time
	next     *domain.NextAlarm

	subsMu  sync.Mutex
	subs    map[int]func(View)
	nextSub int
}

func NewRingingMachine(alarms repository.AlarmRepo, player AudioPlayer, cfg RingingConfig, logger *slog.Logger) *RingingMachine {
	if cfg.SnoozeMinutes <= 0 {
		cfg.SnoozeMinutes = DefaultSnoozeMinutes
	}
	if cfg.MissedGrace <= 0 {
		cfg.MissedGrace = DefaultMissedGrace
	}
	cfg.MissedGrace = max(cfg.MissedGrace, 2*cfg.TickInterval)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RingingMachine{
		alarms: alarms,
		player: player,
		cfg:    cfg,
		log:    logger,
		state:  domain.IdleState(),
		subs:   make(map[int]func(View)),
	}
}

func (m *RingingMachine) State() domain.RingingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Restore resumes a persisted snooze that is still in the future. A stale
// slot is cleared and the machine starts Idle.
func (m *RingingMachine) Restore(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	err := m.restoreLocked(ctx, now)
	m.mu.Unlock()
	m.publish(now)
	return err
}

func (m *RingingMachine) restoreLocked(ctx context.Context, now time.Time) error {
	m.state = domain.IdleState()
	m.lastTick = now

	slot, err := m.alarms.GetSnooze(ctx)
	if err != nil {
		return fmt.Errorf("restoring snooze: %w", err)
	}
	if slot == nil {
		return nil
	}
	snoozed := domain.SnoozedUntil(slot.Until, slot.AlarmID)
	if snoozed.SnoozeDue(now) {
		m.log.Info("discarding expired snooze", "until", slot.Until)
		if err := m.alarms.SetSnooze(ctx, nil); err != nil {
			return fmt.Errorf("clearing expired snooze: %w", err)
		}
		return nil
	}
	m.state = snoozed
	m.log.Info("snooze restored", "until", slot.Until, "alarm_id", derefID(slot.AlarmID))
	return nil
}

// Tick advances the machine to now. A repository failure is returned and
// leaves the state unchanged; the next tick retries.
func (m *RingingMachine) Tick(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	changed, err := m.tickLocked(ctx, now)
	m.mu.Unlock()
	if changed {
		m.publish(now)
	}
	return err
}

func (m *RingingMachine) tickLocked(ctx context.Context, now time.Time) (bool, error) {
	alarms, err := m.alarms.List(ctx)
	if err != nil {
		return false, fmt.Errorf("listing alarms: %w", err)
	}

	ref := m.lastTick
	if floor := now.Add(-m.cfg.MissedGrace); ref.IsZero() || ref.Before(floor) {
		ref = floor
	}
	if ref.After(now) {
		// Clock stepped backwards; do not replay the gap.
		ref = now
	}

	prevNext := m.next
	m.next = scheduler.ComputeNext(alarms, now)
	changed := !sameNext(prevNext, m.next)

	if m.state.SnoozeDue(now) {
		rang, err := m.resumeSnoozeLocked(ctx, alarms)
		if err != nil {
			m.next = prevNext
			return false, err
		}
		if rang {
			m.lastTick = now
			return true, nil
		}
		changed = true
	}

	due := scheduler.ComputeNext(alarms, ref)
	if due == nil || due.TriggerAt.After(now) {
		m.lastTick = now
		return changed, nil
	}

	id := due.Alarm.ID
	if m.state.Phase == domain.PhaseRinging && domain.SameAlarm(m.state.AlarmID, &id) {
		m.lastTick = now
		return changed, nil
	}
	if m.state.Phase == domain.PhaseSnoozed {
		if err := m.alarms.SetSnooze(ctx, nil); err != nil {
			m.next = prevNext
			return false, fmt.Errorf("clearing superseded snooze: %w", err)
		}
	}

	m.state = domain.RingingFor(&id, due.Alarm.Label)
	m.lastTick = now
	m.log.Info("alarm firing", "alarm_id", id, "label", due.Alarm.Label, "trigger_at", due.TriggerAt)
	m.startAudio()

	if err := markFired(ctx, m.alarms, due.Alarm); err != nil {
		// The trigger is already behind lastTick, so it will not fire again this run.
		m.log.Error("acknowledging fired alarm", "alarm_id", id, "error", err)
	}
	return true, nil
}

// resumeSnoozeLocked rings the snoozed alarm once its time has come. The
// persisted slot wins over memory: another process may have cleared it, or
// deleted or replaced the alarm, while the machine was snoozed. It reports
// false when the machine dropped to Idle instead.
func (m *RingingMachine) resumeSnoozeLocked(ctx context.Context, alarms []domain.Alarm) (bool, error) {
	slot, err := m.alarms.GetSnooze(ctx)
	if err != nil {
		return false, fmt.Errorf("reading snooze: %w", err)
	}
	if slot == nil {
		m.log.Info("snooze cleared elsewhere", "alarm_id", derefID(m.state.AlarmID))
		m.state = domain.IdleState()
		return false, nil
	}

	if err := m.alarms.SetSnooze(ctx, nil); err != nil {
		return false, fmt.Errorf("clearing snooze: %w", err)
	}
	id := slot.AlarmID
	if id != nil && !hasAlarm(alarms, *id) {
		m.log.Info("snoozed alarm no longer exists", "alarm_id", *id)
		m.state = domain.IdleState()
		return false, nil
	}
	m.state = domain.RingingFor(id, labelFor(alarms, id))
	m.log.Info("snooze elapsed", "alarm_id", derefID(id))
	m.startAudio()
	return true, nil
}

// markFired acknowledges a fired alarm. One-shot alarms are disabled so they
// cannot ring again; weekly alarms are left alone.
func markFired(ctx context.Context, alarms repository.AlarmRepo, a domain.Alarm) error {
	if !a.IsOneShot() {
		return nil
	}
	if err := alarms.SetEnabled(ctx, a.ID, false); err != nil {
		return fmt.Errorf("disabling fired one-shot alarm %d: %w", a.ID, err)
	}
	return nil
}

// Snooze silences the ringing alarm and schedules it to ring again after
// minutes (the configured default when minutes <= 0). From Idle it snoozes
// whichever alarm is next, or none. The slot is persisted before audio stops;
// on a persistence error the machine keeps ringing.
func (m *RingingMachine) Snooze(ctx context.Context, now time.Time, minutes int) (domain.RingingState, error) {
	m.mu.Lock()
	st, err := m.snoozeLocked(ctx, now, minutes)
	m.mu.Unlock()
	if err == nil {
		m.publish(now)
	}
	return st, err
}

func (m *RingingMachine) snoozeLocked(ctx context.Context, now time.Time, minutes int) (domain.RingingState, error) {
	if minutes <= 0 {
		minutes = m.cfg.SnoozeMinutes
	}

	var id *int64
	switch m.state.Phase {
	case domain.PhaseRinging, domain.PhaseSnoozed:
		id = m.state.AlarmID
	default:
		alarms, err := m.alarms.List(ctx)
		if err != nil {
			return m.state, fmt.Errorf("listing alarms: %w", err)
		}
		if next := scheduler.ComputeNext(alarms, now); next != nil {
			nid := next.Alarm.ID
			id = &nid
		}
	}

	until := now.Add(time.Duration(minutes) * time.Minute).Truncate(time.Minute)
	if err := m.alarms.SetSnooze(ctx, &domain.SnoozeSlot{Until: until, AlarmID: id}); err != nil {
		return m.state, fmt.Errorf("persisting snooze: %w", err)
	}
	m.stopAudio()
	m.state = domain.SnoozedUntil(until, id)
	m.log.Info("alarm snoozed", "alarm_id", derefID(id), "until", until)
	return m.state, nil
}

// Stop silences audio and returns to Idle. It is a no-op when already Idle.
// A failure to clear the persisted snooze is returned after the transition.
func (m *RingingMachine) Stop(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	if m.state.Phase == domain.PhaseIdle {
		m.mu.Unlock()
		return nil
	}
	wasSnoozed := m.state.Phase == domain.PhaseSnoozed
	id := m.state.AlarmID
	m.stopAudio()
	m.state = domain.IdleState()
	var err error
	if wasSnoozed {
		if serr := m.alarms.SetSnooze(ctx, nil); serr != nil {
			err = fmt.Errorf("clearing snooze: %w", serr)
		}
	}
	m.mu.Unlock()

	m.log.Info("alarm stopped", "alarm_id", derefID(id))
	m.publish(now)
	return err
}

// DeleteAlarm removes the alarm and, if it is the one ringing or snoozed,
// returns the machine to Idle.
func (m *RingingMachine) DeleteAlarm(ctx context.Context, now time.Time, id int64) error {
	m.mu.Lock()
	if err := m.alarms.Delete(ctx, id); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("deleting alarm %d: %w", id, err)
	}

	var err error
	changed := false
	if m.next != nil && m.next.Alarm.ID == id {
		m.next = nil
		changed = true
	}
	if m.state.Refers(id) {
		switch m.state.Phase {
		case domain.PhaseRinging:
			m.stopAudio()
		case domain.PhaseSnoozed:
			if serr := m.alarms.SetSnooze(ctx, nil); serr != nil {
				err = fmt.Errorf("clearing snooze: %w", serr)
			}
		}
		m.state = domain.IdleState()
		changed = true
	}
	m.mu.Unlock()

	if changed {
		m.publish(now)
	}
	return err
}

// View returns a snapshot for display at now. Next is the value computed on
// the most recent tick.
func (m *RingingMachine) View(now time.Time) View {
	m.mu.Lock()
	st := m.state
	next := m.next
	m.mu.Unlock()

	v := View{
		At:          now,
		Phase:       st.Phase,
		AlarmID:     st.AlarmID,
		Label:       st.Label,
		SnoozeUntil: st.SnoozeUntil,
		Night:       m.cfg.Night.Contains(now),
	}
	if next != nil {
		n := *next
		v.Next = &n
		v.UntilNext = n.Until(now)
	}
	if m.player != nil {
		v.Audio = m.player.Status()
	}
	return v
}

// Subscribe registers fn to receive a View after every state change and
// whenever the next alarm changes. Callbacks run on the goroutine that caused
// the change, without machine locks held.
func (m *RingingMachine) Subscribe(fn func(View)) (unsubscribe func()) {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

func (m *RingingMachine) publish(now time.Time) {
	m.subsMu.Lock()
	if len(m.subs) == 0 {
		m.subsMu.Unlock()
		return
	}
	fns := make([]func(View), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	v := m.View(now)
	for _, fn := range fns {
		fn(v)
	}
}

// startAudio never fails the transition: a missing or broken sound file
// leaves the alarm ringing silently.
func (m *RingingMachine) startAudio() {
	if m.player == nil {
		return
	}
	if err := m.player.PlayLoopWithRamp(m.cfg.SoundPath, m.cfg.Ramp); err != nil {
		m.log.Error("alarm audio failed to start; ringing silently", "path", m.cfg.SoundPath, "error", err)
	}
}

func (m *RingingMachine) stopAudio() {
	if m.player != nil {
		m.player.Stop()
	}
}

func hasAlarm(alarms []domain.Alarm, id int64) bool {
	for _, a := range alarms {
		if a.ID == id {
			return true
		}
	}
	return false
}

func labelFor(alarms []domain.Alarm, id *int64) string {
	if id != nil {
		for _, a := range alarms {
			if a.ID == *id {
				return a.Label
			}
		}
	}
	return defaultLabel
}

func sameNext(a, b *domain.NextAlarm) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Alarm.ID == b.Alarm.ID && a.TriggerAt.Equal(b.TriggerAt) &&
		a.Alarm.Label == b.Alarm.Label && a.Alarm.Enabled == b.Alarm.Enabled
}

func derefID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
