package pipeline

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"

	"tarifario/internal/ingest"
)

type Attachment struct {
	FileName string
	Content  []byte
}

// ExtractAttachments parses a raw message and returns its subject and the
// attachments the importer can read, in message order.
func ExtractAttachments(raw []byte) (string, []Attachment, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", nil, err
	}

	out := []Attachment{}
	// Some ERP mailers send exports inline with a filename instead of as
	// proper attachments.
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, part := range parts {
		name := strings.TrimSpace(part.FileName)
		if name == "" || !ingest.IsImportable(name) {
			continue
		}
		out = append(out, Attachment{FileName: name, Content: part.Content})
	}
	return env.GetHeader("Subject"), out, nil
}

// headerLine is the first line of a delimited attachment, used to help
// tell articles from tariffs. Spreadsheets are judged on the name alone.
func headerLine(att Attachment) string {
	lower := strings.ToLower(att.FileName)
	if !strings.HasSuffix(lower, ".csv") {
		return ""
	}
	return ingest.HeaderLine(ingest.DecodeText(att.Content))
}
