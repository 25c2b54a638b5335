package favicon

// Source records which strategy produced a Result.
type Source string

const (
	SourceProbe   Source = "probe"
	SourceHTML    Source = "html"
	SourceDefault Source = "default"
)

const (
	DefaultRel  = "icon"
	DefaultType = "image/x-icon"
)

// Result is the outcome of a single resolution. Href is nil only when the
// bundled default icon was used.
type Result struct {
	Blob   []byte
	Href   *string
	Rel    string
	Type   string
	Source Source
}

// Link is an icon candidate found in a document.
type Link struct {
	Tag  string
	Rel  string
	Href string
	Type string
}

// Request describes what to resolve.
type Request struct {
	Domain    string
	Secure    bool
	UserAgent string
}

func (r Request) Scheme() string {
	if r.Secure {
		return "https"
	}
	return "http"
}
