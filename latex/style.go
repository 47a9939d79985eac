package latex

import (
	"io"
	"os"
	"regexp"

	"github.com/fwojciec/folio"
	"github.com/pelletier/go-toml/v2"
)

var (
	lengthRE = regexp.MustCompile(`^\d+(?:\.\d+)?(?:in|cm|mm|pt|em)$`)
	fontRE   = regexp.MustCompile(`^[\p{L}\p{N} .\-]+$`)
)

var papers = map[string]bool{
	"a4paper":     true,
	"a5paper":     true,
	"b5paper":     true,
	"letterpaper": true,
	"legalpaper":  true,
}

// Style controls the typography of rendered documents.
type Style struct {
	MainFont   string  `toml:"main_font"`
	FontSize   int     `toml:"font_size"`
	Paper      string  `toml:"paper"`
	LineSpread float64 `toml:"line_spread"`
	Margins    Margins `toml:"margins"`
}

// Margins are page margins as TeX lengths, such as "1.2in" or "25mm".
type Margins struct {
	Top    string `toml:"top"`
	Bottom string `toml:"bottom"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
}

// DefaultStyle returns an 11pt A4 layout set in FreeSerif with generous
// margins.
func DefaultStyle() Style {
	return Style{
		MainFont:   "FreeSerif",
		FontSize:   11,
		Paper:      "a4paper",
		LineSpread: 1.0,
		Margins: Margins{
			Top:    "1.2in",
			Bottom: "1.2in",
			Left:   "1.3in",
			Right:  "1.3in",
		},
	}
}

// LoadStyle reads a TOML style file. Keys missing from the file keep their
// default values.
func LoadStyle(path string) (Style, error) {
	f, err := os.Open(path)
	if err != nil {
		return Style{}, folio.Errorf(folio.EINVALID, "open style: %v", err)
	}
	defer f.Close()
	return DecodeStyle(f)
}

// DecodeStyle reads a TOML style from r on top of DefaultStyle.
func DecodeStyle(r io.Reader) (Style, error) {
	s := DefaultStyle()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&s); err != nil {
		return Style{}, folio.Errorf(folio.EINVALID, "decode style: %v", err)
	}
	if err := s.Validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

// Validate reports the first invalid field.
func (s Style) Validate() error {
	switch {
	case !fontRE.MatchString(s.MainFont):
		return folio.Errorf(folio.EINVALID, "invalid main_font %q", s.MainFont)
	case s.FontSize != 10 && s.FontSize != 11 && s.FontSize != 12:
		return folio.Errorf(folio.EINVALID, "font_size must be 10, 11 or 12, got %d", s.FontSize)
	case !papers[s.Paper]:
		return folio.Errorf(folio.EINVALID, "unknown paper %q", s.Paper)
	case s.LineSpread < 0.5 || s.LineSpread > 3:
		return folio.Errorf(folio.EINVALID, "line_spread %g out of range", s.LineSpread)
	}
	for name, v := range map[string]string{
		"top":    s.Margins.Top,
		"bottom": s.Margins.Bottom,
		"left":   s.Margins.Left,
		"right":  s.Margins.Right,
	} {
		if !lengthRE.MatchString(v) {
			return folio.Errorf(folio.EINVALID, "invalid %s margin %q", name, v)
		}
	}
	return nil
}
