package verify

// Format tags the wire format of a retrieved receipt document.
type Format int

const (
	FormatPDF Format = iota
	FormatHTML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	}
	return "unknown"
}

// RawDocument is the unparsed result of one fetch. It exists only for
// the duration of a single verification call and is never persisted.
type RawDocument struct {
	Format    Format
	Body      []byte
	SourceURL string
}
