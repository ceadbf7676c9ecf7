package output

// SARIF 2.1.0 log, limited to the properties code scanning tools read.
// https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SARIFVersion is the schema version written by this package.
const SARIFVersion = "2.1.0"

// SARIFSchema is the JSON schema URI for SARIF 2.1.0.
const SARIFSchema = "https://json.schemastore.org/sarif-2.1.0.json"

// SARIFLog is the top-level SARIF document.
type SARIFLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun is one tool invocation.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver names the tool and its rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule is one reporting descriptor.
type SARIFRule struct {
	ID               string              `json:"id"`
	ShortDescription SARIFMessage        `json:"shortDescription"`
	HelpURI          string              `json:"helpUri,omitempty"`
	DefaultConfig    *SARIFDefaultConfig `json:"defaultConfiguration,omitempty"`
}

// SARIFDefaultConfig holds a rule's default level.
type SARIFDefaultConfig struct {
	Level string `json:"level"`
}

// SARIFResult is one finding.
type SARIFResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          SARIFMessage    `json:"message"`
	Locations        []SARIFLocation `json:"locations"`
	RelatedLocations []SARIFLocation `json:"relatedLocations,omitempty"`
}

// SARIFMessage is a plain-text message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation points at a region of a file.
type SARIFLocation struct {
	ID               *int                  `json:"id,omitempty"`
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
	Message          *SARIFMessage         `json:"message,omitempty"`
}

// SARIFPhysicalLocation is a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation is a file URI relative to the source root.
type SARIFArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion is a 1-based line and column.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFLevel maps a severity name to a SARIF level.
func SARIFLevel(severity string) string {
	switch severity {
	case "error":
		return "error"
	case "warn":
		return "warning"
	default:
		return "none"
	}
}

// NewSARIFLocation builds a location for a project-relative path.
func NewSARIFLocation(path string, line, column int) SARIFLocation {
	loc := SARIFLocation{
		PhysicalLocation: SARIFPhysicalLocation{
			ArtifactLocation: SARIFArtifactLocation{URI: path, URIBaseID: "%SRCROOT%"},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &SARIFRegion{StartLine: line, StartColumn: column}
	}
	return loc
}
