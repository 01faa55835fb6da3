package domain

// Quality categories and their weights. The weights sum to MaxQualityScore.
const (
	CategoryCriticalParts            = "criticalParts"
	CategoryRelationshipIDUniqueness = "relationshipIdUniqueness"
	CategoryNonVisualIDUniqueness    = "nonVisualIdUniqueness"
	CategoryRelationshipReferences   = "relationshipReferences"
	CategoryContentTypeCompleteness  = "contentTypeCompleteness"
	CategoryRelationshipTargets      = "relationshipTargets"

	MaxQualityScore = 100
)

// QualityIssueInvalidBuffer is the single issue reported for undecodable input.
const QualityIssueInvalidBuffer = "Empty or invalid buffer"

// QualityCategory describes one weighted category of the quality score.
type QualityCategory struct {
	Name    string
	Weight  float64
	Penalty float64
}

// QualityCategories lists the scored categories in report order.
var QualityCategories = []QualityCategory{
	{Name: CategoryCriticalParts, Weight: 25, Penalty: 25.0 / 3.0},
	{Name: CategoryRelationshipIDUniqueness, Weight: 10, Penalty: 2.5},
	{Name: CategoryNonVisualIDUniqueness, Weight: 20, Penalty: 5},
	{Name: CategoryRelationshipReferences, Weight: 20, Penalty: 5},
	{Name: CategoryContentTypeCompleteness, Weight: 15, Penalty: 3},
	{Name: CategoryRelationshipTargets, Weight: 10, Penalty: 2.5},
}

// CriticalParts are the parts every presentation package must contain.
var CriticalParts = []string{ContentTypesPath, RootRelsPath, PresentationPath}

// QualityScore is a 0-100 structural health score.
type QualityScore struct {
	Score     int                `json:"score" yaml:"score"`
	Issues    []string           `json:"issues" yaml:"issues"`
	Breakdown map[string]float64 `json:"breakdown" yaml:"breakdown"`
}
