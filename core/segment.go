package core

import (
	"strings"
	"time"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// activityLayouts are the accepted last_activity formats, tried in order.
var activityLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var (
	risingStarStatuses = map[string]struct{}{
		schema.StatusMultiCertified: {},
		schema.StatusSpecialist:     {},
		schema.StatusChampion:       {},
	}
	highValueStatuses = map[string]struct{}{
		schema.StatusChampion:   {},
		schema.StatusSpecialist: {},
		schema.StatusMastery:    {},
	}
	earlyStatuses = map[string]struct{}{
		schema.StatusLearning: {},
		schema.StatusEngaged:  {},
	}
)

// Classifier assigns learners to behavioral segments.
// A learner may belong to several segments at once.
type Classifier struct {
	// Now returns the evaluation time for the inactivity rule.
	Now func() time.Time
	// InactiveAfterDays is the idle period after which a learner is inactive.
	InactiveAfterDays int
}

// NewClassifier returns a classifier evaluated at the config's as-of time.
func NewClassifier(cfg *contract.Config) *Classifier {
	days := cfg.InactiveDays
	if days <= 0 {
		days = contract.DefaultInactiveDays
	}
	return &Classifier{Now: cfg.Now, InactiveAfterDays: days}
}

// IsAtRisk reports whether the learner has repeated failures, never passed
// after several attempts, or carries low-quality data with any attempt.
func (c *Classifier) IsAtRisk(l schema.LearnerRecord) bool {
	failed := l.TotalExams - l.ExamsPassed
	return failed >= 2 ||
		(l.TotalExams >= 2 && l.ExamsPassed == 0) ||
		(l.DataQualityLevel == schema.QualityLow && l.TotalExams > 0)
}

// IsRisingStar reports multiple passes or an advanced status.
func (c *Classifier) IsRisingStar(l schema.LearnerRecord) bool {
	_, ok := risingStarStatuses[l.LearnerStatus]
	return l.ExamsPassed >= 2 || ok
}

// IsReadyToAdvance reports learners positioned for their next certification.
func (c *Classifier) IsReadyToAdvance(l schema.LearnerRecord) bool {
	if l.ExamsPassed == 1 && (l.UsesCopilot || l.UsesActions) {
		return true
	}
	if l.LearnerStatus == schema.StatusCertified && l.CopilotDays > 30 {
		return true
	}
	_, early := earlyStatuses[l.LearnerStatus]
	return early && l.CopilotDays > 60
}

// IsInactive reports whether the learner's last activity is older than the idle period.
// A missing date counts as inactive; an unparseable date does not.
func (c *Classifier) IsInactive(l schema.LearnerRecord) bool {
	raw := strings.TrimSpace(l.LastActivity)
	if raw == "" {
		return true
	}
	last, ok := parseActivityDate(raw)
	if !ok {
		return false
	}
	days := int(c.now().Sub(last).Hours() / 24)
	return days > c.inactiveAfter()
}

// IsHighValue reports top-tier statuses or three or more passes.
func (c *Classifier) IsHighValue(l schema.LearnerRecord) bool {
	_, ok := highValueStatuses[l.LearnerStatus]
	return ok || l.ExamsPassed >= 3
}

// Matches reports whether the learner belongs to the segment.
func (c *Classifier) Matches(l schema.LearnerRecord, segment schema.Segment) bool {
	switch segment {
	case schema.SegmentAll:
		return true
	case schema.SegmentAtRisk:
		return c.IsAtRisk(l)
	case schema.SegmentRisingStar:
		return c.IsRisingStar(l)
	case schema.SegmentReadyToAdvance:
		return c.IsReadyToAdvance(l)
	case schema.SegmentInactive:
		return c.IsInactive(l)
	case schema.SegmentHighValue:
		return c.IsHighValue(l)
	default:
		return false
	}
}

// Classify evaluates every segment for the learner.
func (c *Classifier) Classify(l schema.LearnerRecord) schema.SegmentMembership {
	membership := make(schema.SegmentMembership, 0, len(schema.AllSegments))
	for _, s := range schema.AllSegments {
		if c.Matches(l, s) {
			membership = append(membership, s)
		}
	}
	return membership
}

// ClassifyAll pairs each learner with its segment membership.
func (c *Classifier) ClassifyAll(learners []schema.LearnerRecord) []schema.ClassifiedLearner {
	out := make([]schema.ClassifiedLearner, 0, len(learners))
	for _, l := range learners {
		out = append(out, schema.ClassifiedLearner{LearnerRecord: l, Segments: c.Classify(l)})
	}
	return out
}

// Filter returns the learners that belong to the segment, preserving order.
func (c *Classifier) Filter(learners []schema.LearnerRecord, segment schema.Segment) []schema.LearnerRecord {
	out := make([]schema.LearnerRecord, 0, len(learners))
	for _, l := range learners {
		if c.Matches(l, segment) {
			out = append(out, l)
		}
	}
	return out
}

// CountSegments counts segment membership over the whole population.
func (c *Classifier) CountSegments(learners []schema.LearnerRecord) schema.SegmentCounts {
	var counts schema.SegmentCounts
	for _, l := range learners {
		for _, s := range c.Classify(l) {
			counts.Increment(s)
		}
	}
	return counts
}

func (c *Classifier) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Classifier) inactiveAfter() int {
	if c.InactiveAfterDays <= 0 {
		return contract.DefaultInactiveDays
	}
	return c.InactiveAfterDays
}

// parseActivityDate parses a last_activity value in any accepted layout.
func parseActivityDate(raw string) (time.Time, bool) {
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
