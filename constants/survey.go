package constants

// Column names used by the cleaning stage.
const (
	ColumnCompensation = "ConvertedCompYearly"
	ColumnMainBranch   = "MainBranch"
	ColumnEmployment   = "Employment"
	ColumnDevType      = "DevType"
)

// MissingSentinel is the marker survey exports use for an unanswered question.
const MissingSentinel = "NA"

// DefaultSeparator splits multi-value answers such as "Python;SQL;Go".
const DefaultSeparator = ";"

// Allowed values for the role filter.
const (
	ProfessionalDeveloper = "I am a developer by profession"
	FullTimeEmployed      = "Employed, full-time"
)

// DataRoles are the DevType answers kept by the role filter.
var DataRoles = []string{
	"Data or business analyst",
	"Data scientist or machine learning specialist",
	"Developer, AI",
}

// ReservedManifestColumns are metadata names that may appear in a skills
// manifest but are never selected as features.
var ReservedManifestColumns = []string{"JobSat", "EmbeddedHaveWorkedWith"}

// DefaultFilterSpec returns the role/employment filter as a fresh map.
func DefaultFilterSpec() map[string][]string {
	roles := make([]string, len(DataRoles))
	copy(roles, DataRoles)
	return map[string][]string{
		ColumnMainBranch: {ProfessionalDeveloper},
		ColumnEmployment: {FullTimeEmployed},
		ColumnDevType:    roles,
	}
}
