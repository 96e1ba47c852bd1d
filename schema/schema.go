// Package schema holds the data types shared across skillpulse.
package schema

import "strings"

// LearnerRecord is one learner's normalized snapshot.
// Records are produced once at the provider boundary and never mutated afterwards.
type LearnerRecord struct {
	Handle           string           `json:"handle"`
	Email            string           `json:"email"`
	LearnerStatus    string           `json:"learner_status"`
	ExamsPassed      int              `json:"exams_passed"`
	TotalExams       int              `json:"total_exams"`
	UsesCopilot      bool             `json:"uses_copilot"`
	UsesActions      bool             `json:"uses_actions"`
	CopilotDays      int              `json:"copilot_days"`
	LastActivity     string           `json:"last_activity"`
	DataQualityScore float64          `json:"data_quality_score"`
	DataQualityLevel DataQualityLevel `json:"data_quality_level"`
}

// DisplayName returns the handle, falling back to the email.
func (l LearnerRecord) DisplayName() string {
	if l.Handle != "" {
		return l.Handle
	}
	return l.Email
}

// FunnelStage is one step of an ordered progression.
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// InsightRecord is one generated finding.
type InsightRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Metric      string   `json:"metric"`
	Action      string   `json:"action"`
	Link        string   `json:"link,omitempty"`
}

// SegmentCounts maps each segment to a learner count over the full population.
type SegmentCounts struct {
	All            int `json:"all"`
	AtRisk         int `json:"at_risk"`
	RisingStars    int `json:"rising_stars"`
	ReadyToAdvance int `json:"ready_to_advance"`
	Inactive       int `json:"inactive"`
	HighValue      int `json:"high_value"`
}

// Get returns the count for a segment.
func (c SegmentCounts) Get(s Segment) int {
	switch s {
	case SegmentAll:
		return c.All
	case SegmentAtRisk:
		return c.AtRisk
	case SegmentRisingStar:
		return c.RisingStars
	case SegmentReadyToAdvance:
		return c.ReadyToAdvance
	case SegmentInactive:
		return c.Inactive
	case SegmentHighValue:
		return c.HighValue
	default:
		return 0
	}
}

// Increment adds one to the count for a segment.
func (c *SegmentCounts) Increment(s Segment) {
	switch s {
	case SegmentAll:
		c.All++
	case SegmentAtRisk:
		c.AtRisk++
	case SegmentRisingStar:
		c.RisingStars++
	case SegmentReadyToAdvance:
		c.ReadyToAdvance++
	case SegmentInactive:
		c.Inactive++
	case SegmentHighValue:
		c.HighValue++
	}
}

// SegmentMembership lists the segments a learner belongs to, in AllSegments order.
type SegmentMembership []Segment

// Has reports whether the membership includes the segment.
func (m SegmentMembership) Has(s Segment) bool {
	for _, seg := range m {
		if seg == s {
			return true
		}
	}
	return false
}

// String joins the segment names with commas.
func (m SegmentMembership) String() string {
	names := make([]string, len(m))
	for i, seg := range m {
		names[i] = string(seg)
	}
	return strings.Join(names, ",")
}

// ClassifiedLearner pairs a learner with its segment membership.
type ClassifiedLearner struct {
	LearnerRecord
	Segments SegmentMembership `json:"segments"`
}

// LearnerQuery describes one page request against the enriched-learners endpoint.
type LearnerQuery struct {
	Limit   int
	Offset  int
	Segment Segment
	Search  string
}

// LearnerPage is one normalized page of learners.
type LearnerPage struct {
	Learners []LearnerRecord `json:"learners"`
	Total    int             `json:"total_count"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}
