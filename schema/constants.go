package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Segment represents a behavioral learner segment.
	Segment string

	// Priority represents the priority of an insight.
	Priority string

	// Grade represents the letter grade of a program ROI score.
	Grade string

	// DataQualityLevel represents the provider's data quality rating for a learner.
	DataQualityLevel string

	// BreakdownKey represents keys used in the ROI score breakdown.
	BreakdownKey string

	// Endpoint represents a Raw Data Provider endpoint.
	Endpoint string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // response cache only
	NoneBackend       DatabaseBackend = "none"
)

// All learner segments supported.
const (
	SegmentAll            Segment = "all"
	SegmentAtRisk         Segment = "at_risk"
	SegmentRisingStar     Segment = "rising_star"
	SegmentReadyToAdvance Segment = "ready_to_advance"
	SegmentInactive       Segment = "inactive"
	SegmentHighValue      Segment = "high_value"
)

// All insight priorities supported.
const (
	PriorityHigh    Priority = "high"
	PriorityMedium  Priority = "medium"
	PriorityLow     Priority = "low"
	PrioritySuccess Priority = "success"
)

// All ROI grades, best first.
const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// Data quality levels reported by the provider.
const (
	QualityHigh   DataQualityLevel = "high"
	QualityMedium DataQualityLevel = "medium"
	QualityLow    DataQualityLevel = "low"
)

// Learner statuses reported by the provider.
const (
	StatusLearning       = "Learning"
	StatusEngaged        = "Engaged"
	StatusCertified      = "Certified"
	StatusMultiCertified = "Multi-Certified"
	StatusSpecialist     = "Specialist"
	StatusChampion       = "Champion"
	StatusMastery        = "Mastery"
	StatusPowerUser      = "Power User"
	StatusPractitioner   = "Practitioner"
	StatusActiveLearner  = "Active Learner"
	StatusExplorer       = "Explorer"
)

// Insight identifiers, in generation order.
const (
	InsightCertRateLow        = "cert-rate-low"
	InsightCertRateStrong     = "cert-rate-strong"
	InsightPassRateLow        = "pass-rate-low"
	InsightNoShowHigh         = "no-show-high"
	InsightCopilotLow         = "copilot-adoption-low"
	InsightCopilotStrong      = "copilot-adoption-strong"
	InsightFunnelDropOff      = "funnel-drop-off"
	InsightCompletionTimeSlow = "completion-time-slow"
)

// Breakdown keys used in the ROI score.
const (
	BreakdownCertRate BreakdownKey = "cert_rate"
	BreakdownPassRate BreakdownKey = "pass_rate"
	BreakdownAdoption BreakdownKey = "adoption"
	BreakdownUsage    BreakdownKey = "usage"
)

// Raw Data Provider endpoints.
const (
	MetricsEndpoint       Endpoint = "metrics"
	JourneyEndpoint       Endpoint = "journey"
	ImpactEndpoint        Endpoint = "impact"
	LearnersEndpoint      Endpoint = "enriched-learners"
	SegmentCountsEndpoint Endpoint = "segment-counts"
)

// AllSegments lists every segment in display order.
var AllSegments = []Segment{
	SegmentAll,
	SegmentAtRisk,
	SegmentRisingStar,
	SegmentReadyToAdvance,
	SegmentInactive,
	SegmentHighValue,
}

// AllEndpoints lists every provider endpoint.
var AllEndpoints = []Endpoint{
	MetricsEndpoint,
	JourneyEndpoint,
	ImpactEndpoint,
	LearnersEndpoint,
	SegmentCountsEndpoint,
}

// KnownStatuses lists the canonical learner statuses.
var KnownStatuses = []string{
	StatusLearning,
	StatusEngaged,
	StatusCertified,
	StatusMultiCertified,
	StatusSpecialist,
	StatusChampion,
	StatusMastery,
	StatusPowerUser,
	StatusPractitioner,
	StatusActiveLearner,
	StatusExplorer,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidSnapshotBackends lists the backends that can hold snapshot history.
var ValidSnapshotBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSegments lists all valid segments.
var ValidSegments = map[Segment]struct{}{
	SegmentAll:            {},
	SegmentAtRisk:         {},
	SegmentRisingStar:     {},
	SegmentReadyToAdvance: {},
	SegmentInactive:       {},
	SegmentHighValue:      {},
}

// ValidPriorities lists all valid insight priorities.
var ValidPriorities = map[Priority]struct{}{
	PriorityHigh:    {},
	PriorityMedium:  {},
	PriorityLow:     {},
	PrioritySuccess: {},
}

// ValidDataQualityLevels lists all valid data quality levels.
var ValidDataQualityLevels = map[DataQualityLevel]struct{}{
	QualityHigh:   {},
	QualityMedium: {},
	QualityLow:    {},
}

// ValidEndpoints lists all valid provider endpoints.
var ValidEndpoints = map[Endpoint]struct{}{
	MetricsEndpoint:       {},
	JourneyEndpoint:       {},
	ImpactEndpoint:        {},
	LearnersEndpoint:      {},
	SegmentCountsEndpoint: {},
}

// GetDefaultWeights returns the default ROI score weights.
func GetDefaultWeights() map[BreakdownKey]float64 {
	return map[BreakdownKey]float64{
		BreakdownCertRate: 0.20,
		BreakdownPassRate: 0.20,
		BreakdownAdoption: 0.40,
		BreakdownUsage:    0.20,
	}
}
