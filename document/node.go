package document

import (
	"image"

	"webgu/html"
	"webgu/theme"
)

// Kind separates element nodes from the synthetic ones the projector adds.
type Kind int

const (
	KindElement Kind = iota
	// KindTruncated marks the point where the render cap stopped projection.
	KindTruncated
	// KindEmpty is the single node of a page with no elements.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindEmpty:
		return "empty"
	default:
		return "element"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unrecognised names become KindElement.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "truncated":
		*k = KindTruncated
	case "empty":
		*k = KindEmpty
	default:
		*k = KindElement
	}
	return nil
}

// Node is one visual unit of a rendered page. Element nodes map to exactly
// one source element.
type Node struct {
	Kind     Kind              `json:"kind"`
	Category html.Category     `json:"category"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Hints    theme.Hints       `json:"hints"`

	Link  *Link  `json:"link,omitempty"`
	Image *Image `json:"image,omitempty"`
	Input *Input `json:"input,omitempty"`
}

// Link is the navigation target of a link node.
type Link struct {
	Href string `json:"href"`
	// URL is Href resolved against the page. Empty when not navigable.
	URL       string `json:"url,omitempty"`
	Navigable bool   `json:"navigable"`
}

// ImageState tracks an image node through loading.
type ImageState int

const (
	// ImagePlaceholder: the element had no src.
	ImagePlaceholder ImageState = iota
	// ImagePending: a fetch is due. Nodes are left in this state when no
	// image fetcher is configured.
	ImagePending
	ImageLoaded
	ImageFailed
)

func (s ImageState) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageLoaded:
		return "loaded"
	case ImageFailed:
		return "failed"
	default:
		return "placeholder"
	}
}

func (s ImageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ImageState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pending":
		*s = ImagePending
	case "loaded":
		*s = ImageLoaded
	case "failed":
		*s = ImageFailed
	default:
		*s = ImagePlaceholder
	}
	return nil
}

// Image describes an image node.
type Image struct {
	Src    string     `json:"src,omitempty"`
	URL    string     `json:"url,omitempty"`
	Alt    string     `json:"alt,omitempty"`
	State  ImageState `json:"state"`
	MIME   string     `json:"mime,omitempty"`
	Width  int        `json:"width,omitempty"`
	Height int        `json:"height,omitempty"`

	// Thumbnail is the decoded image scaled to the configured width.
	Thumbnail image.Image `json:"-"`
}

// InputKind is the sub-kind of an input node.
type InputKind int

const (
	InputText InputKind = iota
	InputButton
	InputCheckbox
	InputRadio
)

func (k InputKind) String() string {
	switch k {
	case InputButton:
		return "button"
	case InputCheckbox:
		return "checkbox"
	case InputRadio:
		return "radio"
	default:
		return "text"
	}
}

func (k InputKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an input kind. Unrecognised names become InputText.
func (k *InputKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "button":
		*k = InputButton
	case "checkbox":
		*k = InputCheckbox
	case "radio":
		*k = InputRadio
	default:
		*k = InputText
	}
	return nil
}

// Input describes a form control.
type Input struct {
	Kind        InputKind `json:"kind"`
	Name        string    `json:"name,omitempty"`
	Value       string    `json:"value,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Checked     bool      `json:"checked,omitempty"`
}

// Result is the output of one projection.
type Result struct {
	Nodes []Node `json:"nodes"`
	// Elements is the number of elements offered to the projector.
	Elements int `json:"elements"`
	// Rendered is the number of element nodes produced.
	Rendered  int  `json:"rendered"`
	Truncated bool `json:"truncated,omitempty"`

	ImagesLoaded int `json:"images_loaded,omitempty"`
	ImagesFailed int `json:"images_failed,omitempty"`
}
