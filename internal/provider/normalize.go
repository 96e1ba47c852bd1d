package provider

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/skillpulse/skillpulse/schema"
)

// Accepted aliases for each learner field, in precedence order.
var (
	handleKeys       = []string{"handle", "github_handle", "user_handle"}
	statusKeys       = []string{"learner_status", "status"}
	examsPassedKeys  = []string{"exams_passed", "certifications"}
	totalExamsKeys   = []string{"total_exams", "exams_attempted"}
	usesCopilotKeys  = []string{"uses_copilot", "copilot_user"}
	usesActionsKeys  = []string{"uses_actions", "actions_user"}
	copilotDaysKeys  = []string{"copilot_days", "copilot_days_active"}
	lastActivityKeys = []string{"last_activity", "last_active"}
	qualityScoreKeys = []string{"data_quality_score"}
	qualityLevelKeys = []string{"data_quality_level"}
	emailKeys        = []string{"email"}
)

// statusLookup maps a folded status to its canonical spelling.
var statusLookup = func() map[string]string {
	m := make(map[string]string, len(schema.KnownStatuses))
	for _, s := range schema.KnownStatuses {
		m[foldStatus(s)] = s
	}
	return m
}()

// rawLearner is a learner object as the provider sends it.
type rawLearner map[string]any

// rawLearnerPage is a learner page as the provider sends it.
// Some deployments report the total as total_count, others as count.
type rawLearnerPage struct {
	Learners   []rawLearner `json:"learners"`
	TotalCount *int         `json:"total_count"`
	Count      *int         `json:"count"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}

// normalize converts the raw page into schema form.
func (p rawLearnerPage) normalize(query schema.LearnerQuery) *schema.LearnerPage {
	page := &schema.LearnerPage{
		Learners: make([]schema.LearnerRecord, 0, len(p.Learners)),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	for _, raw := range p.Learners {
		page.Learners = append(page.Learners, NormalizeLearner(raw))
	}

	switch {
	case p.TotalCount != nil:
		page.Total = *p.TotalCount
	case p.Count != nil:
		page.Total = *p.Count
	default:
		page.Total = query.Offset + len(page.Learners)
	}
	if page.Limit == 0 {
		page.Limit = query.Limit
	}
	if page.Offset == 0 {
		page.Offset = query.Offset
	}
	return page
}

// NormalizeLearner converts a raw learner object into a LearnerRecord.
// Counts are clamped so that 0 <= exams_passed <= total_exams.
func NormalizeLearner(raw map[string]any) schema.LearnerRecord {
	r := rawLearner(raw)
	l := schema.LearnerRecord{
		Handle:           r.str(handleKeys),
		Email:            r.str(emailKeys),
		LearnerStatus:    CanonicalStatus(r.str(statusKeys)),
		ExamsPassed:      max(r.integer(examsPassedKeys), 0),
		TotalExams:       max(r.integer(totalExamsKeys), 0),
		UsesCopilot:      r.boolean(usesCopilotKeys),
		UsesActions:      r.boolean(usesActionsKeys),
		CopilotDays:      max(r.integer(copilotDaysKeys), 0),
		LastActivity:     r.str(lastActivityKeys),
		DataQualityScore: r.float(qualityScoreKeys),
		DataQualityLevel: schema.DataQualityLevel(strings.ToLower(r.str(qualityLevelKeys))),
	}
	if l.TotalExams < l.ExamsPassed {
		l.TotalExams = l.ExamsPassed
	}
	return l
}

// CanonicalStatus maps a status to its known spelling, ignoring case and separators.
// Unknown statuses are returned trimmed.
func CanonicalStatus(s string) string {
	s = strings.TrimSpace(s)
	if canonical, ok := statusLookup[foldStatus(s)]; ok {
		return canonical
	}
	return s
}

func foldStatus(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

// lookup returns the first present, non-null value among the keys.
func (r rawLearner) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r rawLearner) str(keys []string) string {
	v, ok := r.lookup(keys)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func (r rawLearner) integer(keys []string) int {
	v, ok := r.lookup(keys)
	if !ok {
		return 0
	}
	if f, isFloat := v.(float64); isFloat {
		return int(f)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

func (r rawLearner) float(keys []string) float64 {
	v, ok := r.lookup(keys)
	if !ok {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

// boolean accepts JSON booleans, numbers, and strings such as "true", "yes" and "1".
func (r rawLearner) boolean(keys []string) bool {
	v, ok := r.lookup(keys)
	if !ok {
		return false
	}
	if s, isString := v.(string); isString {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y":
			return true
		case "no", "n", "":
			return false
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}
