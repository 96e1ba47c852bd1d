package schema

// AggregateInput is everything the Metric Aggregator reads.
// Optional provider sections that are absent arrive as zero values.
type AggregateInput struct {
	Totals  ProgramTotals
	Summary CertificationSummary
	// HasSummary is false when the provider omitted certification analytics.
	HasSummary bool
}

// ProgramMetrics is the scalar output of the Metric Aggregator.
// Rates are percentages and are not clamped.
type ProgramMetrics struct {
	TotalLearners      int     `json:"total_learners"`
	CertifiedUsers     int     `json:"certified_users"`
	LearningUsers      int     `json:"learning_users"`
	ProspectUsers      int     `json:"prospect_users"`
	TotalCertsEarned   int     `json:"total_certs_earned"`
	TotalExamAttempts  int     `json:"total_exam_attempts"`
	TotalNoShows       int     `json:"total_no_shows"`
	CertRate           float64 `json:"cert_rate"`
	PassRate           float64 `json:"pass_rate"`
	NoShowRate         float64 `json:"no_show_rate"`
	RetentionRate      float64 `json:"retention_rate"`
	AvgProductsAdopted float64 `json:"avg_products_adopted"`
	UsageIncrease      float64 `json:"usage_increase"`
	HasPassRate        bool    `json:"has_pass_rate"`
	HasNoShowRate      bool    `json:"has_no_show_rate"`
}

// LearnerSummary aggregates one collection of learner records.
type LearnerSummary struct {
	Learners            int     `json:"learners"`
	CertifiedLearners   int     `json:"certified_learners"`
	ExamsPassed         int     `json:"exams_passed"`
	ExamsAttempted      int     `json:"exams_attempted"`
	ExamPassRate        float64 `json:"exam_pass_rate"`
	CopilotUsers        int     `json:"copilot_users"`
	ActionsUsers        int     `json:"actions_users"`
	CopilotAdoption     float64 `json:"copilot_adoption"`
	ActionsAdoption     float64 `json:"actions_adoption"`
	AvgCopilotDays      float64 `json:"avg_copilot_days"`
	AvgDataQualityScore float64 `json:"avg_data_quality_score"`
}

// ROIInput holds the percentage inputs to the program ROI score.
type ROIInput struct {
	CertRate         float64 `json:"cert_rate"`
	PassRate         float64 `json:"pass_rate"`
	CopilotAdoption  float64 `json:"copilot_adoption"`
	ActionsAdoption  float64 `json:"actions_adoption"`
	SecurityAdoption float64 `json:"security_adoption"`
	RawUsageIncrease float64 `json:"raw_usage_increase"`
}

// ROIWeights are the weights of the four score terms. They sum to 1.
type ROIWeights struct {
	CertRate float64 `json:"cert_rate"`
	PassRate float64 `json:"pass_rate"`
	Adoption float64 `json:"adoption"`
	Usage    float64 `json:"usage"`
}

// ROIResult is the computed program health score.
type ROIResult struct {
	Score              int                      `json:"score"`
	RawScore           float64                  `json:"raw_score"`
	Grade              Grade                    `json:"grade"`
	AvgProductAdoption float64                  `json:"avg_product_adoption"`
	UsageIncrease      float64                  `json:"usage_increase"`
	Breakdown          map[BreakdownKey]float64 `json:"breakdown"`
}

// InsightInput is everything the insight rules read.
// The Has* flags mark metrics that are available; an unavailable metric never fires a rule.
type InsightInput struct {
	CertRate            float64
	HasCertRate         bool
	PassRate            float64
	HasPassRate         bool
	NoShowRate          float64
	HasNoShowRate       bool
	CopilotAdoption     float64
	HasCopilotAdoption  bool
	HighestDropOff      *StageConversion
	AvgTimeToCompletion float64
}

// InsightThresholds are the trigger points of the insight rules.
type InsightThresholds struct {
	CertRateLow        float64 `json:"cert_rate_low"`
	CertRateStrong     float64 `json:"cert_rate_strong"`
	PassRateLow        float64 `json:"pass_rate_low"`
	NoShowHigh         float64 `json:"no_show_high"`
	CopilotLow         float64 `json:"copilot_low"`
	CopilotStrong      float64 `json:"copilot_strong"`
	DropOffHigh        float64 `json:"drop_off_high"`
	CompletionDaysSlow float64 `json:"completion_days_slow"`
}

// DefaultInsightThresholds returns the benchmark thresholds used when none are configured.
func DefaultInsightThresholds() InsightThresholds {
	return InsightThresholds{
		CertRateLow:        20,
		CertRateStrong:     40,
		PassRateLow:        70,
		NoShowHigh:         15,
		CopilotLow:         30,
		CopilotStrong:      50,
		DropOffHigh:        50,
		CompletionDaysSlow: 90,
	}
}

// StageResult is one funnel stage with its share of the first stage.
type StageResult struct {
	Stage      string  `json:"stage"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StageConversion is the conversion between two adjacent stages.
type StageConversion struct {
	FromStage      string  `json:"from_stage"`
	ToStage        string  `json:"to_stage"`
	FromCount      int     `json:"from_count"`
	ToCount        int     `json:"to_count"`
	ConversionRate float64 `json:"conversion_rate"`
	DropOffRate    float64 `json:"drop_off_rate"`
}

// FunnelResult is the output of the Funnel/Conversion Calculator.
type FunnelResult struct {
	Stages         []StageResult     `json:"stages"`
	Conversions    []StageConversion `json:"conversions"`
	HighestDropOff *StageConversion  `json:"highest_drop_off,omitempty"`
}

// DashboardResult joins every derived output for one data refresh.
type DashboardResult struct {
	Metrics             ProgramMetrics  `json:"metrics"`
	ROIInput            ROIInput        `json:"roi_input"`
	ROI                 ROIResult       `json:"roi"`
	Insights            []InsightRecord `json:"insights"`
	Funnel              FunnelResult    `json:"funnel"`
	AvgTimeToCompletion float64         `json:"avg_time_to_completion"`
	Segments            SegmentCounts   `json:"segments"`
	SegmentsSource      string          `json:"segments_source"`
}
