package domain

// ImageRef points at an image held in storage. Data is optional and carried
// only when the bytes are already in memory.
type ImageRef struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// Empty reports whether the reference carries neither a key nor bytes.
func (r ImageRef) Empty() bool {
	return r.Key == "" && len(r.Data) == 0
}

// SameAs reports whether two references point at the same stored image.
func (r *ImageRef) SameAs(other *ImageRef) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Key != "" || other.Key != "" {
		return r.Key == other.Key
	}
	return r.URL == other.URL && len(r.Data) == len(other.Data)
}
