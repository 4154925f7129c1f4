package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/elastic_client"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Rule struct {
	Name             string
	RequiresPrevious bool

	Check func(ctx *DetectionContext) *fvdf.Event
}

type DetectionContext struct {
	Previous *fvdf.PositionSample
	Sample   *fvdf.PositionSample

	Samples SampleLookup

	Thresholds Thresholds
}

// Detector runs the rule table over each (previous, current) sample pair and
// records the events that survive deduplication
type Detector struct {
	rules      []*Rule
	thresholds Thresholds
	samples    SampleLookup
	sink       EventSink
}

func NewDetector(profile *Profile, samples SampleLookup, sink EventSink) *Detector {
	return &Detector{
		rules:      append(BuiltinRules(), profile.CompileCustomRules()...),
		thresholds: profile.Thresholds,
		samples:    samples,
		sink:       sink,
	}
}

type DetectorOutcomeElasticEvent struct {
	Timestamp time.Time

	Rule       string
	VehicleRef string
	EventType  string
	Severity   string

	Emitted          bool
	SuppressedReason string
}

type ruleCandidate struct {
	rule  *Rule
	event *fvdf.Event
}

// ProcessSample evaluates every rule and persists the candidates that are
// outside their cooldown window. Returns the events that were recorded.
func (d *Detector) ProcessSample(previous *fvdf.PositionSample, sample *fvdf.PositionSample) []*fvdf.Event {
	var emitted []*fvdf.Event

	for _, candidate := range d.evaluate(previous, sample) {
		event := candidate.event

		if d.sink.InCooldown(event) {
			d.recordOutcome(candidate.rule, event, false, "cooldown")
			continue
		}

		inserted, err := d.sink.Record(event)
		if err != nil {
			log.Error().Err(err).Str("rule", candidate.rule.Name).Msg("Failed to record event")
			continue
		}
		if !inserted {
			d.recordOutcome(candidate.rule, event, false, "duplicate")
			continue
		}

		d.sink.StartCooldown(event)
		d.recordOutcome(candidate.rule, event, true, "")

		emitted = append(emitted, event)
	}

	return emitted
}

// Evaluate returns the completed event candidates without touching storage
func (d *Detector) Evaluate(previous *fvdf.PositionSample, sample *fvdf.PositionSample) []*fvdf.Event {
	var candidateEvents []*fvdf.Event

	for _, candidate := range d.evaluate(previous, sample) {
		candidateEvents = append(candidateEvents, candidate.event)
	}

	return candidateEvents
}

func (d *Detector) evaluate(previous *fvdf.PositionSample, sample *fvdf.PositionSample) []ruleCandidate {
	ctx := &DetectionContext{
		Previous: previous,
		Sample:   sample,

		Samples: d.samples,

		Thresholds: d.thresholds,
	}

	var candidates []ruleCandidate

	for _, rule := range d.rules {
		if rule.RequiresPrevious && previous == nil {
			continue
		}

		event := d.runRule(rule, ctx)
		if event == nil {
			continue
		}

		d.complete(event, sample)

		candidates = append(candidates, ruleCandidate{rule: rule, event: event})
	}

	return candidates
}

func (d *Detector) runRule(rule *Rule, ctx *DetectionContext) (event *fvdf.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("rule", rule.Name).Msg("Rule check failed")
			event = nil
		}
	}()

	return rule.Check(ctx)
}

func (d *Detector) complete(event *fvdf.Event, sample *fvdf.PositionSample) {
	event.PrimaryIdentifier = fmt.Sprintf(fvdf.EventIDFormat, uuid.New().String())
	event.VehicleRef = sample.VehicleRef

	if len(event.Location.Coordinates) == 0 {
		event.Location = sample.Location
	}

	// The sample clock, not the wall clock, so a redelivered sample produces
	// an identical debounce key
	event.CreationDateTime = sample.RecordedAt
	event.ExpirationDateTime = sample.RecordedAt.Add(event.EventType.Expiry())

	if event.DebounceKey == "" {
		event.DebounceKey = fvdf.GenerateDebounceKey(sample.VehicleRef, event.EventType, sample.RecordedAt)
	}

	event.DataSource = sample.DataSource
}

func (d *Detector) recordOutcome(rule *Rule, event *fvdf.Event, emitted bool, reason string) {
	currentTime := time.Now()
	yearNumber, weekNumber := currentTime.ISOWeek()
	outcomeIndexName := fmt.Sprintf("fleetpulse-detector-events-%d-%d", yearNumber, weekNumber)

	elasticEvent, _ := json.Marshal(DetectorOutcomeElasticEvent{
		Timestamp: currentTime,

		Rule:       rule.Name,
		VehicleRef: event.VehicleRef,
		EventType:  string(event.EventType),
		Severity:   string(event.Severity),

		Emitted:          emitted,
		SuppressedReason: reason,
	})

	elastic_client.IndexRequest(outcomeIndexName, bytes.NewReader(elasticEvent))
}
