package export

import (
	"io"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Writer renders registrations as a downloadable document.
type Writer interface {
	// ContentType is the MIME type of the rendered document.
	ContentType() string
	// FileExtension is the filename extension, including the dot.
	FileExtension() string
	WriteRegistrations(w io.Writer, rs []domain.Registration) error
}
