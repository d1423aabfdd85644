package render

import (
	"io"
	"mime"

	"github.com/jmgilman/go/errors"
	"github.com/klauspost/compress/zip"
)

// WriteZip writes every bulk item into a zip archive named <id><ext>.
// Payloads are usually already compressed images, so entries are stored.
func WriteZip(w io.Writer, items []BulkItem) error {
	zw := zip.NewWriter(w)

	for _, it := range items {
		hdr := &zip.FileHeader{
			Name:   it.ID + extension(it.MediaType),
			Method: zip.Store,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to add bundle entry")
		}
		if _, err := f.Write(it.Payload); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to write bundle entry")
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to finish bundle")
	}
	return nil
}

func extension(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/svg+xml":
		return ".svg"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
