package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

type IconKind string

const (
	IconNone     IconKind = "none"
	IconSymbolic IconKind = "symbolic"
	IconImage    IconKind = "image"
)

// Icon is either a named symbol from the UI icon set, an image URL, or nothing.
type Icon struct {
	Kind IconKind `json:"kind"`
	Name string   `json:"name,omitempty"`
	URL  string   `json:"url,omitempty"`
}

func NoIcon() Icon {
	return Icon{Kind: IconNone}
}

func SymbolicIcon(name string) Icon {
	if name == "" {
		return NoIcon()
	}
	return Icon{Kind: IconSymbolic, Name: name}
}

func ImageIcon(url string) Icon {
	if url == "" {
		return NoIcon()
	}
	return Icon{Kind: IconImage, URL: url}
}

// ParseIcon reads the older single-string icon form.
func ParseIcon(value string) Icon {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return NoIcon()
	case strings.HasPrefix(value, "http://"),
		strings.HasPrefix(value, "https://"),
		strings.HasPrefix(value, "/"):
		return ImageIcon(value)
	default:
		return SymbolicIcon(value)
	}
}

func (i Icon) IsImage() bool {
	return i.Kind == IconImage
}

func (i Icon) MarshalJSON() ([]byte, error) {
	type plain Icon
	switch i.Kind {
	case IconSymbolic:
		return json.Marshal(plain{Kind: IconSymbolic, Name: i.Name})
	case IconImage:
		return json.Marshal(plain{Kind: IconImage, URL: i.URL})
	default:
		return json.Marshal(plain{Kind: IconNone})
	}
}

func (i *Icon) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = NoIcon()
		return nil
	}

	if data[0] == '"' {
		var legacy string
		if err := json.Unmarshal(data, &legacy); err != nil {
			return err
		}
		*i = ParseIcon(legacy)
		return nil
	}

	type plain Icon
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	switch decoded.Kind {
	case IconSymbolic:
		*i = SymbolicIcon(decoded.Name)
	case IconImage:
		*i = ImageIcon(decoded.URL)
	default:
		*i = NoIcon()
	}
	return nil
}
