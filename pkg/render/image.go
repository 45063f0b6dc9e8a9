package render

import (
	"bytes"
	"encoding/base64"
)

// Image is an encoded drawing.
type Image struct {
	Format Format
	Data   []byte
}

func (img Image) MIMEType() string { return img.Format.MIMEType() }

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURI returns the image as a data: URI suitable for an <img src>.
func (img Image) DataURI() string {
	return "data:" + img.MIMEType() + ";base64," + img.Base64()
}

// Equal reports whether both images have the same format and bytes.
func (img Image) Equal(other Image) bool {
	return img.Format == other.Format && bytes.Equal(img.Data, other.Data)
}
