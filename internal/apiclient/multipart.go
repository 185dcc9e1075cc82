package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/gabriel-vasile/mimetype"
)

// FileField is the form field name the backend expects uploads under.
const FileField = "image"

// sniffLen matches the number of bytes mimetype inspects by default.
const sniffLen = 3072

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *model.Upload, out any) error {
	return c.doMultipart(ctx, http.MethodPost, path, fields, file, out)
}

func (c *Client) PatchMultipart(ctx context.Context, path string, fields map[string]string, file *model.Upload, out any) error {
	return c.doMultipart(ctx, http.MethodPatch, path, fields, file, out)
}

// doMultipart streams the form through a pipe, so the file is never held in
// memory as a whole.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, file *model.Upload, out any) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(writer, fields, file))
	}()

	err := c.do(ctx, method, path, pr, writer.FormDataContentType(), out)
	// unblocks the writer goroutine when the request failed before draining the body
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}

func writeForm(writer *multipart.Writer, fields map[string]string, file *model.Upload) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := writer.WriteField(k, fields[k]); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if file != nil && file.Content != nil {
		if err := writeFile(writer, file); err != nil {
			return err
		}
	}

	return writer.Close()
}

func writeFile(writer *multipart.Writer, file *model.Upload) error {
	upload, err := DetectMIME(*file)
	if err != nil {
		return err
	}

	filename := upload.Filename
	if filename == "" {
		filename = "upload"
		if mime := mimetype.Lookup(upload.MIMEType); mime != nil {
			filename += mime.Extension()
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", upload.MIMEType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}

	if _, err := io.Copy(part, upload.Content); err != nil {
		return fmt.Errorf("copy upload: %w", err)
	}

	return nil
}

// DetectMIME replaces the declared type of an upload with the type sniffed
// from its first bytes. The returned Upload reads the sniffed bytes again
// before the rest.
func DetectMIME(file model.Upload) (model.Upload, error) {
	if file.Content == nil {
		return file, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return file, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	file.MIMEType = mimetype.Detect(head).String()
	file.Content = io.MultiReader(bytes.NewReader(head), file.Content)
	return file, nil
}
