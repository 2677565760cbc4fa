package scanning

import "fmt"

// Page segmentation modes used by the default profiles.
const (
	PSMSingleColumn = 4
	PSMSingleBlock  = 6
	PSMSparseText   = 11
)

// OEMDefault lets the engine pick LSTM or legacy recognition.
const OEMDefault = 3

// DefaultLanguage is the single recognition language.
const DefaultLanguage = "eng"

// Profile is one recognition engine configuration.
type Profile struct {
	// OEM is the engine mode.
	OEM int
	// PSM is the page segmentation mode.
	PSM int
	// Language is a tesseract language code such as "eng".
	Language string
}

// Name identifies the profile in logs and record metadata.
func (p Profile) Name() string {
	return fmt.Sprintf("oem%d-psm%d-%s", p.OEM, p.PSM, p.Language)
}

// DefaultProfiles returns the three profiles tried per variant, in order:
// uniform block of text, single column of variable-size text, sparse text.
func DefaultProfiles(lang string) []Profile {
	if lang == "" {
		lang = DefaultLanguage
	}
	return []Profile{
		{OEM: OEMDefault, PSM: PSMSingleBlock, Language: lang},
		{OEM: OEMDefault, PSM: PSMSingleColumn, Language: lang},
		{OEM: OEMDefault, PSM: PSMSparseText, Language: lang},
	}
}
