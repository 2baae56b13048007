// Package pipeline sequences the triage core for one utterance: danger
// detection, entity extraction, slot merge, intent routing, triage decision.
// A danger match short-circuits everything after it.
package pipeline

import (
	"context"
	"strings"
	"time"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"
	"pediatric-triage/internal/common/metrics"
	"pediatric-triage/internal/triage/danger"
	"pediatric-triage/internal/triage/decision"
	"pediatric-triage/internal/triage/history"
	"pediatric-triage/internal/triage/intent"
	"pediatric-triage/internal/triage/normalize"
	"pediatric-triage/internal/triage/session"
)

// TurnRecorder receives the audit record of each processed turn. Append
// failures are logged, never propagated to the caller.
type TurnRecorder interface {
	Append(ctx context.Context, t history.Turn) error
}

type Pipeline struct {
	detector   *danger.Detector
	classifier *intent.Classifier
	store      session.Store
	engine     *decision.Engine
	recorder   TurnRecorder
	logger     logger.Logger
}

// New wires the pipeline. recorder may be nil when the audit log is disabled.
func New(
	detector *danger.Detector,
	classifier *intent.Classifier,
	store session.Store,
	engine *decision.Engine,
	recorder TurnRecorder,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		detector:   detector,
		classifier: classifier,
		store:      store,
		engine:     engine,
		recorder:   recorder,
		logger:     log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// requiredSlots are the facts the decision engine most wants; the pipeline
// reports which are still unknown so the response layer can ask for them.
var requiredSlots = []string{
	normalize.SlotSymptom,
	normalize.SlotAgeMonths,
	normalize.SlotTemperature,
	normalize.SlotDuration,
}

func (p *Pipeline) Process(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.ConversationID == "" {
		return nil, commonerrors.NewInvalidRequestError("conversation_id is required; the caller mints ids")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, commonerrors.NewInvalidRequestError("message is empty")
	}

	log := p.logger.With(map[string]interface{}{"conversationId": req.ConversationID})

	// Danger detection runs first and alone decides whether anything else runs.
	dangerStart := time.Now()
	dr := p.detector.Detect(req.Message)
	metrics.PipelineStageDuration.WithLabelValues("danger").Observe(time.Since(dangerStart).Seconds())

	if dr != nil {
		metrics.DangerSignalsTotal.WithLabelValues(dr.Category).Inc()
		metrics.TriageRequestsTotal.WithLabelValues("danger").Inc()

		result := &Result{
			IsDanger:          true,
			Category:          dr.Category,
			Action:            dr.Action,
			Reason:            dr.Reason,
			MatchedConditions: dr.MatchedConditions,
			Warning:           danger.FormatWarning(dr),
		}
		p.record(ctx, req, result, log)
		return result, nil
	}

	extractStart := time.Now()
	entities := normalize.Extract(req.Message)
	metrics.PipelineStageDuration.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())

	mergeStart := time.Now()
	merged, err := p.store.MergeEntities(ctx, req.ConversationID, session.Slots(entities))
	metrics.PipelineStageDuration.WithLabelValues("merge").Observe(time.Since(mergeStart).Seconds())
	if err != nil {
		metrics.TriageRequestsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("slot merge failed", nil)
		return nil, err
	}

	cls := p.classifier.Route(req.Message)
	metrics.IntentClassificationsTotal.WithLabelValues(string(cls.Intent)).Inc()

	var triage *decision.Decision
	if symptom, ok := merged[normalize.SlotSymptom].(string); ok && symptom != "" {
		decideStart := time.Now()
		d := p.engine.Decide(symptom, merged)
		metrics.PipelineStageDuration.WithLabelValues("decide").Observe(time.Since(decideStart).Seconds())
		metrics.TriageDecisionsTotal.WithLabelValues(string(d.Level), symptom).Inc()
		triage = &d
	}

	metrics.TriageRequestsTotal.WithLabelValues("normal").Inc()

	result := &Result{
		IsDanger:     false,
		Intent:       string(cls.Intent),
		Confidence:   cls.Confidence,
		Triage:       triage,
		Slots:        merged,
		MissingSlots: missingSlots(merged),
	}
	p.record(ctx, req, result, log)
	return result, nil
}

// missingSlots lists required slots still unknown after the merge. A slot
// confirmed in any earlier turn is never reported missing again.
func missingSlots(slots session.Slots) []string {
	var missing []string
	for _, name := range requiredSlots {
		v, ok := slots[name]
		if !ok || v == nil || v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (p *Pipeline) record(ctx context.Context, req *Request, res *Result, log logger.Logger) {
	if p.recorder == nil {
		return
	}

	turn := history.Turn{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Message:        req.Message,
		IsDanger:       res.IsDanger,
		Intent:         res.Intent,
	}
	if res.IsDanger {
		turn.TriageLevel = string(decision.LevelEmergency)
		turn.TriageReason = res.Reason
	} else if res.Triage != nil {
		turn.TriageLevel = string(res.Triage.Level)
		turn.TriageReason = res.Triage.Reason
	}

	if err := p.recorder.Append(ctx, turn); err != nil {
		log.WithError(commonerrors.NewHistoryWriteFailedError(req.ConversationID, err)).
			Warn("history append failed", nil)
	}
}
