package model

import "io"

// Upload is a file waiting to be forwarded to the backend as a multipart part.
type Upload struct {
	Content  io.Reader
	MIMEType string
	Filename string
}
