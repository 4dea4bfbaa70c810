package rfqapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// Upload is one file part of a multipart request.
type Upload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

func multipartRequest(method, path string, fields map[string]string, fileField string, uploads []Upload) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, u := range uploads {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, u.Name))
		ct := u.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("create part %s: %w", u.Name, err)
		}
		if _, err := io.Copy(part, u.Data); err != nil {
			return request{}, fmt.Errorf("copy %s: %w", u.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: &buf, contentType: w.FormDataContentType()}, nil
}
