package rest

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// multipartForm writes a multipart body with the given string fields and
// returns its content type.
func multipartForm(t *testing.T, buf *bytes.Buffer, fields map[string]string) string {
	t.Helper()

	mw := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return mw.FormDataContentType()
}
