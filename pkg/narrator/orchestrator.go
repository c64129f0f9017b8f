// Package narrator coordinates proximity monitoring, script generation, and
// playback for an active tour.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"roadtripgo/pkg/config"
	"roadtripgo/pkg/content"
	"roadtripgo/pkg/geo"
	"roadtripgo/pkg/model"
	"roadtripgo/pkg/playback"
	"roadtripgo/pkg/proximity"
	"roadtripgo/pkg/timing"
	"roadtripgo/pkg/voice"
)

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Generator Generator
	Audio     AudioPlayer
	Voice     Interactor
	Images    ImageFetcher
	Source    TelemetrySource
	History   HistoryRecorder
	Queue     *playback.Manager
}

// Orchestrator owns the narration lifecycle for one tour at a time. All
// session mutation happens on the poll goroutine; public methods only read
// state or signal the loop.
type Orchestrator struct {
	cfg     config.NarratorConfig
	gen     Generator
	audio   AudioPlayer
	voice   Interactor
	images  ImageFetcher
	source  TelemetrySource
	history HistoryRecorder
	q       *playback.Manager
	monitor *proximity.Monitor

	mu       sync.RWMutex
	tour     *model.Tour
	sessions []*model.NarrationSession
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}

	current    *model.Narration
	playCancel context.CancelFunc

	lastTel   vehicleFix
	route     []model.Coordinate
	visited   map[string]string // POI ID -> name, narrated at least once
	startedAt time.Time

	subs []chan Event
}

type vehicleFix struct {
	loc      geo.Point
	speedMph float64
	heading  float64
	battery  float64
	valid    bool
}

// New creates an orchestrator with the given policy and collaborators.
func New(cfg config.NarratorConfig, thresholds proximity.Thresholds, d Deps) *Orchestrator {
	q := d.Queue
	if q == nil {
		q = playback.NewManager()
	}
	return &Orchestrator{
		cfg:     cfg,
		gen:     d.Generator,
		audio:   d.Audio,
		voice:   d.Voice,
		images:  d.Images,
		source:  d.Source,
		history: d.History,
		q:       q,
		monitor: proximity.New(thresholds),
		visited: make(map[string]string),
	}
}

// PrepareTour builds narration sessions for every narratable waypoint and
// prefetches display images. A tour already in progress is stopped and
// recorded first. It returns the sessions in route order once all prefetches
// have settled; charging stops get no session.
func (o *Orchestrator) PrepareTour(ctx context.Context, tour *model.Tour) ([]*model.NarrationSession, error) {
	if o.Running() {
		if err := o.StopTour(ctx); err != nil && !errors.Is(err, ErrNoTour) {
			return nil, err
		}
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrTourActive
	}

	var sessions []*model.NarrationSession
	for _, wp := range tour.Waypoints {
		if wp.POI == nil || wp.IsChargingStop {
			continue
		}
		sessions = append(sessions, model.NewSession(wp.POI))
	}

	o.tour = tour
	o.sessions = sessions
	o.visited = make(map[string]string)
	o.route = nil
	o.mu.Unlock()

	if len(sessions) == 0 {
		return nil, fmt.Errorf("prepare tour %q: %w: no narratable waypoints", tour.Name, ErrInvalidPOI)
	}

	_ = o.q.Transition(model.PlaybackPreparing)
	o.prefetchImages(ctx, sessions)
	_ = o.q.Transition(model.PlaybackIdle)

	slog.Info("Narrator: Tour prepared", "tour", tour.Name, "sessions", len(sessions))
	return sessions, nil
}

// prefetchImages resolves thumbnails for the first few sessions concurrently
// and blocks until they settle. Failures only cost the picture.
func (o *Orchestrator) prefetchImages(ctx context.Context, sessions []*model.NarrationSession) {
	if o.images == nil {
		return
	}
	limit := o.cfg.ImagePrefetchLimit
	if limit <= 0 || limit > len(sessions) {
		limit = len(sessions)
	}

	var wg sync.WaitGroup
	for _, s := range sessions[:limit] {
		if s.POI.ThumbnailURL != "" {
			continue
		}
		wg.Add(1)
		go func(poi *model.POI) {
			defer wg.Done()
			url, err := o.images.Thumbnail(ctx, poi.Name)
			if err != nil {
				slog.Debug("Narrator: Image prefetch failed", "poi", poi.Name, "error", err)
				return
			}
			o.mu.Lock()
			poi.ThumbnailURL = url
			o.mu.Unlock()
		}(s.POI)
	}
	wg.Wait()
}

// StartMonitoring starts the poll loop for the prepared tour. Only one loop
// runs at a time; it owns all session state until StopTour.
func (o *Orchestrator) StartMonitoring(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return ErrTourActive
	}
	if o.tour == nil {
		return ErrNoTour
	}

	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})
	o.running = true
	o.startedAt = time.Now()
	o.tour.Status = model.TourStatusActive

	go o.loop(loopCtx)

	slog.Info("Narrator: Monitoring started", "tour", o.tour.Name, "interval", time.Duration(o.cfg.PollInterval))
	go o.emit(Event{Type: EventTourStarted})
	return nil
}

func (o *Orchestrator) loop(ctx context.Context) {
	defer close(o.done)

	interval := time.Duration(o.cfg.PollInterval)
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First poll immediately so a short first leg is not missed.
	o.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll reads telemetry, updates every live session, and runs the phase
// handlers inline. Handlers block the loop; a narration in progress simply
// delays the next poll, which matches what a single narrator voice can do
// anyway.
func (o *Orchestrator) poll(ctx context.Context) {
	tel, err := o.source.GetTelemetry(ctx)
	if err != nil {
		slog.Warn("Narrator: Telemetry unavailable", "error", err)
		return
	}

	fix := vehicleFix{
		loc:      geo.Point{Lat: tel.Latitude, Lon: tel.Longitude},
		speedMph: tel.SpeedMph,
		heading:  tel.Heading,
		battery:  tel.BatteryPercent,
		valid:    true,
	}

	o.mu.Lock()
	o.lastTel = fix
	o.route = append(o.route, model.Coordinate{Lat: tel.Latitude, Lon: tel.Longitude})
	sessions := o.sessions
	o.mu.Unlock()

	for _, s := range sessions {
		if ctx.Err() != nil {
			return
		}
		if s.CurrentPhase.Terminal() {
			continue
		}
		o.updateSession(ctx, s, fix)
	}
}

func (o *Orchestrator) updateSession(ctx context.Context, s *model.NarrationSession, fix vehicleFix) {
	o.mu.Lock()
	o.monitor.UpdateSession(s, fix.loc, fix.speedMph, fix.heading)
	next := o.monitor.NextPhase(s)
	changed := next != s.CurrentPhase
	if changed {
		slog.Info("Narrator: Phase change", "poi", s.POI.Name, "from", s.CurrentPhase, "to", next,
			"distance_mi", fmt.Sprintf("%.2f", s.DistanceMiles))
		s.CurrentPhase = next
	}
	phase := s.CurrentPhase
	o.mu.Unlock()

	if changed {
		o.emit(Event{Type: EventPhaseChange, POIID: s.POI.ID, POIName: s.POI.Name, Phase: phase})
	}

	switch phase {
	case model.PhaseApproaching:
		o.handleApproaching(ctx, s, fix)
	case model.PhaseDetailed:
		o.handleDetailed(ctx, s)
	case model.PhaseArrival:
		o.handleArrival(ctx, s)
	case model.PhasePassed:
		if changed {
			o.handlePassed(s)
		}
	}
}

// handleApproaching plays the teaser once the vehicle crosses the computed
// trigger distance, so the script ends inside the lead window before the POI.
func (o *Orchestrator) handleApproaching(ctx context.Context, s *model.NarrationSession, fix vehicleFix) {
	if s.TeaserPlayed {
		return
	}

	w := timing.Window{
		Lower: time.Duration(o.cfg.TimingWindowLower),
		Upper: time.Duration(o.cfg.TimingWindowUpper),
	}
	tm := timing.Calculate(time.Duration(o.cfg.TeaserDuration), s.DistanceMiles, fix.speedMph, w)
	if fix.speedMph > 0 && tm.DistanceFromPOIOnCompletionMiles <= 0 {
		// The script cannot finish before arrival from here.
		slog.Info("Narrator: Teaser does not fit, skipping", "poi", s.POI.Name,
			"distance_mi", fmt.Sprintf("%.2f", s.DistanceMiles))
		s.TeaserPlayed = true
		return
	}
	if s.DistanceMiles > tm.TriggerDistanceMiles {
		return
	}

	s.TeaserPlayed = true
	if err := o.narrate(ctx, s, content.IntentTeaser, time.Duration(o.cfg.TeaserDuration), time.Duration(o.cfg.TeaserTimeout), false); err != nil {
		if errors.Is(err, ErrTimeout) {
			// A blown deadline spends the POI; no retry on later polls.
			o.setPhase(s, model.PhasePassed)
			o.handlePassed(s)
		}
		return
	}

	// The teaser ends with an offer; anything short of an explicit yes
	// mutes the detailed script for this POI.
	if o.voice != nil && !o.sessionPhase(s).Terminal() {
		resp, err := o.voice.Ask(ctx, "Would you like to hear more about "+s.POI.Name+" as you get closer?", time.Duration(o.cfg.VoiceTimeout))
		o.mu.Lock()
		if err == nil && resp == voice.ResponseYes {
			s.UserWantsMore = true
		} else {
			s.DetailedPlayed = true
		}
		o.mu.Unlock()
	}
}

func (o *Orchestrator) handleDetailed(ctx context.Context, s *model.NarrationSession) {
	if s.DetailedPlayed {
		return
	}
	s.DetailedPlayed = true
	if err := o.narrate(ctx, s, content.IntentDetailed, time.Duration(o.cfg.DetailedDuration), time.Duration(o.cfg.DetailedTimeout), false); err != nil && errors.Is(err, ErrTimeout) {
		o.setPhase(s, model.PhasePassed)
		o.handlePassed(s)
	}
}

// handleArrival offers the guided tour exactly once. Declining or staying
// silent finishes this POI.
func (o *Orchestrator) handleArrival(ctx context.Context, s *model.NarrationSession) {
	if s.ArrivalPromptPlayed {
		return
	}
	s.ArrivalPromptPlayed = true

	wantsTour := false
	if o.voice != nil {
		o.emit(Event{Type: EventPromptOpen, POIID: s.POI.ID, POIName: s.POI.Name, Detail: "guided tour offer"})
		resp, err := o.voice.Ask(ctx, "You have arrived at "+s.POI.Name+". Would you like a guided tour?", time.Duration(o.cfg.VoiceTimeout))
		if err == nil && resp == voice.ResponseYes {
			wantsTour = true
		}
	}

	if wantsTour {
		o.mu.Lock()
		s.UserWantsTour = true
		o.mu.Unlock()
		// No generation deadline: the driver has stopped and is waiting.
		if err := o.narrate(ctx, s, content.IntentGuidedTour, time.Duration(o.cfg.GuidedTourDuration), 0, true); err == nil {
			o.setPhase(s, model.PhaseGuidedTour)
			return
		}
	}

	o.setPhase(s, model.PhasePassed)
	o.handlePassed(s)
}

// handlePassed cleans up a POI the vehicle has left behind.
func (o *Orchestrator) handlePassed(s *model.NarrationSession) {
	if removed := o.q.Remove(s.POI.ID); removed > 0 {
		slog.Info("Narrator: Dropped queued narrations for passed POI", "poi", s.POI.Name, "count", removed)
	}
}

// setPhase moves a session forward. Terminal phases stick: a session skipped
// mid-playback stays passed even when its handler finishes afterwards.
func (o *Orchestrator) setPhase(s *model.NarrationSession, phase model.NarrationPhase) {
	o.mu.Lock()
	old := s.CurrentPhase
	if old.Terminal() {
		o.mu.Unlock()
		return
	}
	s.CurrentPhase = phase
	o.mu.Unlock()
	if old != phase {
		o.emit(Event{Type: EventPhaseChange, POIID: s.POI.ID, POIName: s.POI.Name, Phase: phase})
	}
}

func (o *Orchestrator) sessionPhase(s *model.NarrationSession) model.NarrationPhase {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return s.CurrentPhase
}

// narrate generates a script under the phase deadline, then plays everything
// queued. Generation failures mark the attempt spent; the tour moves on.
// Timeouts and cancellations settle back to idle, anything else lands the
// state machine in failed where status reads can see it.
func (o *Orchestrator) narrate(ctx context.Context, s *model.NarrationSession, intent string, target, timeout time.Duration, priority bool) error {
	_ = o.q.Transition(model.PlaybackPreparing)
	n, err := o.generateWithTimeout(ctx, s.POI, intent, target, timeout)
	if err != nil {
		slog.Error("Narrator: Generation failed", "poi", s.POI.Name, "intent", intent, "error", err)
		o.emit(Event{Type: EventNarrationFailed, POIID: s.POI.ID, POIName: s.POI.Name, Detail: err.Error()})
		if errors.Is(err, ErrTimeout) || ctx.Err() != nil {
			_ = o.q.Transition(model.PlaybackIdle)
		} else {
			_ = o.q.Transition(model.PlaybackFailed)
		}
		return err
	}

	o.q.Enqueue(n, priority)
	o.drainQueue(ctx)
	return nil
}

// generateWithTimeout races generation against the phase deadline. The loser
// is cancelled; a late result is discarded with its context. A non-positive
// timeout generates without a deadline, bounded only by ctx.
func (o *Orchestrator) generateWithTimeout(ctx context.Context, poi *model.POI, intent string, target, timeout time.Duration) (*model.Narration, error) {
	if timeout <= 0 {
		n, err := o.gen.Generate(ctx, poi, intent, target)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		return n, nil
	}

	genCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		n   *model.Narration
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		n, err := o.gen.Generate(genCtx, poi, intent, target)
		resCh <- result{n: n, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, res.err)
		}
		return res.n, nil
	case <-timer.C:
		cancel()
		return nil, fmt.Errorf("%w: %s for %q after %s", ErrTimeout, intent, poi.Name, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drainQueue plays queued narrations one at a time until the queue is empty.
func (o *Orchestrator) drainQueue(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		n := o.q.Pop()
		if n == nil {
			return
		}
		o.playNarration(ctx, n)
	}
}

func (o *Orchestrator) playNarration(ctx context.Context, n *model.Narration) {
	if err := o.q.Transition(model.PlaybackPreparing); err != nil {
		slog.Warn("Narrator: Playback state out of step", "error", err)
	}

	playCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.current = n
	o.playCancel = cancel
	n.Status = model.NarrationPlaying
	n.StartedAt = time.Now()
	o.mu.Unlock()

	_ = o.q.Transition(model.PlaybackPlaying)
	o.emit(Event{Type: EventNarrationStarted, POIID: n.POIID, POIName: n.POIName, Title: n.Title})
	slog.Info("Narrator: Playing", "title", n.Title, "duration", n.Duration.Round(time.Second))

	err := o.audio.Play(playCtx, n)
	cancel()

	o.mu.Lock()
	o.current = nil
	o.playCancel = nil
	n.CompletedAt = time.Now()
	if err != nil {
		n.Status = model.NarrationCancelled
	} else {
		n.Status = model.NarrationCompleted
		o.visited[n.POIID] = n.POIName
	}
	o.mu.Unlock()

	if err != nil {
		_ = o.q.Transition(model.PlaybackIdle)
		slog.Info("Narrator: Playback interrupted", "title", n.Title, "reason", err)
		return
	}
	_ = o.q.Transition(model.PlaybackCompleted)
	_ = o.q.Transition(model.PlaybackIdle)
	o.emit(Event{Type: EventNarrationCompleted, POIID: n.POIID, POIName: n.POIName, Title: n.Title})
}

// Skip cancels the narration currently playing and marks its session passed,
// so none of the later phases for that POI come back.
func (o *Orchestrator) Skip() {
	o.mu.Lock()
	cancel := o.playCancel
	var poiID, title string
	if o.current != nil {
		poiID = o.current.POIID
		title = o.current.Title
	}
	o.mu.Unlock()

	if cancel == nil {
		return
	}
	slog.Info("Narrator: Skipping", "title", title)
	cancel()

	if s := o.sessionByPOI(poiID); s != nil {
		o.setPhase(s, model.PhasePassed)
		o.handlePassed(s)
	}
}

func (o *Orchestrator) sessionByPOI(poiID string) *model.NarrationSession {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, s := range o.sessions {
		if s.POI.ID == poiID {
			return s
		}
	}
	return nil
}

// Pause pauses playback without disturbing the poll loop.
func (o *Orchestrator) Pause() {
	if err := o.q.Transition(model.PlaybackPaused); err != nil {
		return
	}
	o.audio.Pause()
}

// Resume resumes paused playback.
func (o *Orchestrator) Resume() {
	if err := o.q.Transition(model.PlaybackPlaying); err != nil {
		return
	}
	o.audio.Resume()
}

// StopTour stops monitoring, clears pending work, and records the run.
func (o *Orchestrator) StopTour(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return ErrNoTour
	}
	cancel := o.cancel
	done := o.done
	playCancel := o.playCancel
	o.mu.Unlock()

	if playCancel != nil {
		playCancel()
	}
	cancel()
	<-done

	o.q.Clear()
	_ = o.q.Transition(model.PlaybackIdle)
	o.audio.Stop()

	o.mu.Lock()
	o.running = false
	o.tour.Status = model.TourStatusCompleted
	entry := o.historyEntryLocked()
	tourName := o.tour.Name
	o.mu.Unlock()

	if o.history != nil && entry != nil {
		if err := o.history.SaveTour(ctx, entry); err != nil {
			slog.Error("Narrator: Failed to record tour history", "tour", tourName, "error", err)
		}
	}

	slog.Info("Narrator: Tour stopped", "tour", tourName, "pois_visited", len(o.visited))
	o.emit(Event{Type: EventTourStopped})
	return nil
}

// historyEntryLocked snapshots the finished run. Caller holds mu.
func (o *Orchestrator) historyEntryLocked() *model.HistoryEntry {
	if o.tour == nil {
		return nil
	}
	names := make([]string, 0, len(o.visited))
	for _, name := range o.visited {
		names = append(names, name)
	}
	sort.Strings(names)

	miles := 0.0
	for i := 1; i < len(o.route); i++ {
		miles += geo.DistanceMiles(
			geo.Point{Lat: o.route[i-1].Lat, Lon: o.route[i-1].Lon},
			geo.Point{Lat: o.route[i].Lat, Lon: o.route[i].Lon})
	}

	return &model.HistoryEntry{
		ID:          uuid.NewString(),
		TourName:    o.tour.Name,
		StartedAt:   o.startedAt,
		EndedAt:     time.Now(),
		Miles:       miles,
		Duration:    time.Since(o.startedAt),
		POIsVisited: len(o.visited),
		POINames:    names,
		Route:       o.route,
	}
}

// Running reports whether a tour loop is active.
func (o *Orchestrator) Running() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// SessionStatus is the externally visible state of one POI session.
type SessionStatus struct {
	POIID         string               `json:"poi_id"`
	Name          string               `json:"name"`
	Phase         model.NarrationPhase `json:"phase"`
	DistanceMiles float64              `json:"distance_miles"`
	ETASeconds    float64              `json:"eta_seconds,omitempty"`
}

// Status is a point-in-time snapshot of the orchestrator for status APIs.
type Status struct {
	Running  bool                `json:"running"`
	Tour     *model.Tour         `json:"tour,omitempty"`
	Playback model.PlaybackState `json:"playback"`
	Current  *model.Narration    `json:"current,omitempty"`
	Queued   int                 `json:"queued"`
	Sessions []SessionStatus     `json:"sessions,omitempty"`

	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	SpeedMph  float64 `json:"speed_mph,omitempty"`
	Battery   float64 `json:"battery,omitempty"`
}

// Status snapshots the current tour state.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := Status{
		Running:  o.running,
		Tour:     o.tour,
		Playback: o.q.State(),
		Current:  o.current,
		Queued:   o.q.Count(),
	}
	for _, s := range o.sessions {
		ss := SessionStatus{
			POIID:         s.POI.ID,
			Name:          s.POI.Name,
			Phase:         s.CurrentPhase,
			DistanceMiles: s.DistanceMiles,
		}
		if !math.IsInf(s.ETASeconds, 1) {
			ss.ETASeconds = s.ETASeconds
		}
		st.Sessions = append(st.Sessions, ss)
	}
	if o.lastTel.valid {
		st.Latitude = o.lastTel.loc.Lat
		st.Longitude = o.lastTel.loc.Lon
		st.SpeedMph = o.lastTel.speedMph
		st.Battery = o.lastTel.battery
	}
	return st
}
