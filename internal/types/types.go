package types

type Lighting string

const (
	LightingLow  Lighting = "low"
	LightingGood Lighting = "good"
	LightingHigh Lighting = "high"
)

type WarningType string

const (
	WarningBlur       WarningType = "blur"
	WarningGlare      WarningType = "glare"
	WarningMotion     WarningType = "motion" // reserved, not emitted by the analyzer
	WarningShadow     WarningType = "shadow" // reserved, not emitted by the analyzer
	WarningLighting   WarningType = "lighting"
	WarningAlignment  WarningType = "alignment"
	WarningResolution WarningType = "resolution"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Warning struct {
	Type     WarningType `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// Edges holds the per-border "document content reaches this margin" flags.
type Edges struct {
	Top    bool `json:"top"`
	Right  bool `json:"right"`
	Bottom bool `json:"bottom"`
	Left   bool `json:"left"`
}

func (e Edges) All() bool {
	return e.Top && e.Right && e.Bottom && e.Left
}

// ── Validation result ────────────────────────────────────────────────────────

type OCRField struct {
	Label      string `json:"label"`
	Extracted  string `json:"extracted"`
	Expected   string `json:"expected,omitempty"`
	Confidence int    `json:"confidence"` // 0-100
	Mismatch   bool   `json:"mismatch"`   // set by a downstream comparator only
}

type ValidationResult struct {
	IsValid          bool       `json:"isValid"`
	ClarityScore     float64    `json:"clarityScore"` // 0-100
	OCRFields        []OCRField `json:"ocrFields"`
	FraudFlags       []string   `json:"fraudFlags"` // reserved, always empty
	RejectionReasons []string   `json:"rejectionReasons"`
}

// ── Processing endpoint ──────────────────────────────────────────────────────

type ProcessRequest struct {
	Image        string `json:"image"`        // base64, optionally data-URI prefixed
	DocumentType string `json:"documentType"` // catalog id; unknown ids use the default variant
}

type ProcessResponse struct {
	Success          bool              `json:"success"`
	ValidationResult *ValidationResult `json:"validationResult,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// ── Still-image quality check ────────────────────────────────────────────────

type AnalyzeRequest struct {
	Image string `json:"image"`
}

type QualityReport struct {
	SourceWidth      int       `json:"sourceWidth"`
	SourceHeight     int       `json:"sourceHeight"`
	Luminance        float64   `json:"luminance"`
	AvgGradient      float64   `json:"avgGradient"`
	RawClarity       float64   `json:"rawClarity"`
	Lighting         Lighting  `json:"lighting"`
	Edges            Edges     `json:"edges"`
	TextDensity      int       `json:"textDensity"`
	DocumentDetected bool      `json:"documentDetected"`
	Warnings         []Warning `json:"warnings"`
	Ready            bool      `json:"ready"`
}

type AnalyzeResponse struct {
	Success bool           `json:"success"`
	Report  *QualityReport `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
}
