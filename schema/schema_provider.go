package schema

// MetricsResponse is the body of GET metrics.
type MetricsResponse struct {
	Metrics                ProgramTotals           `json:"metrics"`
	CertificationAnalytics *CertificationAnalytics `json:"certificationAnalytics,omitempty"`
	StatusBreakdown        []StatusCount           `json:"statusBreakdown,omitempty"`
}

// ProgramTotals holds the provider's program-wide aggregates.
type ProgramTotals struct {
	TotalLearners      int     `json:"totalLearners"`
	CertifiedUsers     int     `json:"certifiedUsers"`
	LearningUsers      int     `json:"learningUsers"`
	ProspectUsers      int     `json:"prospectUsers"`
	RetentionRate      float64 `json:"retentionRate"`
	AvgProductsAdopted float64 `json:"avgProductsAdopted"`
	AvgUsageIncrease   float64 `json:"avgUsageIncrease"`
	TotalCertsEarned   int     `json:"totalCertsEarned"`
}

// CertificationAnalytics wraps the exam summary and forecast.
type CertificationAnalytics struct {
	Summary      *CertificationSummary `json:"summary,omitempty"`
	ExamForecast map[string]any        `json:"examForecast,omitempty"`
}

// CertificationSummary holds exam pass and attendance totals.
type CertificationSummary struct {
	OverallPassRate   float64 `json:"overallPassRate"`
	TotalExamAttempts int     `json:"totalExamAttempts"`
	TotalNoShows      int     `json:"totalNoShows"`
}

// StatusCount is one row of the status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// JourneyResponse is the body of GET journey.
type JourneyResponse struct {
	Funnel              []FunnelStage  `json:"funnel"`
	AvgTimeToCompletion float64        `json:"avgTimeToCompletion"`
	DropOffAnalysis     []DropOffEntry `json:"dropOffAnalysis"`
}

// DropOffEntry is the provider's precomputed drop-off for a stage.
type DropOffEntry struct {
	Stage       string  `json:"stage"`
	Count       int     `json:"count"`
	DropOffRate float64 `json:"dropOffRate"`
	NextStage   string  `json:"nextStage"`
}

// ImpactResponse is the body of GET impact.
type ImpactResponse struct {
	ProductAdoption []ProductAdoption `json:"productAdoption"`
	StageImpact     []StageImpact     `json:"stageImpact"`
	CorrelationData []map[string]any  `json:"correlationData,omitempty"`
}

// ProductAdoption is an adoption percentage before and after the program.
type ProductAdoption struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// StageImpact describes usage change for learners at one stage.
type StageImpact struct {
	Stage                string  `json:"stage"`
	Learners             int     `json:"learners"`
	AvgUsageIncrease     float64 `json:"avgUsageIncrease"`
	PlatformTimeIncrease float64 `json:"platformTimeIncrease"`
	TopProduct           string  `json:"topProduct"`
}
