package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/zach2017/oldtownaltour/internal/models"
)

// ContentEncoder turns upload content into the URL stored on the
// attachment.
type ContentEncoder interface {
	Encode(ctx context.Context, fd models.FileDescriptor) (string, error)
}

// DataURLEncoder produces RFC 2397 data URLs ("data:<mime>;base64,...").
type DataURLEncoder struct{}

func (DataURLEncoder) Encode(ctx context.Context, fd models.FileDescriptor) (string, error) {
	if fd.Open == nil {
		return "", fmt.Errorf("no content for %s", fd.Name)
	}
	rc, err := fd.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fd.Name, err)
	}
	defer rc.Close()

	var sb strings.Builder
	sb.WriteString("data:")
	sb.WriteString(mimeType(fd.Name))
	sb.WriteString(";base64,")

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, contextReader{ctx: ctx, r: rc}); err != nil {
		return "", fmt.Errorf("read %s: %w", fd.Name, err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
