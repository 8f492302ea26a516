package consolidation

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var embeddedDataRegex = regexp.MustCompile(`(?s)<script id="assignment-data">.*?</script>`)

// EmbedPayload injects the payload into a static HTML document as a
// script-tag-scoped global. Re-running replaces the previous tag
// instead of appending a second one. The JSON encoder's default HTML
// escaping keeps the embedded blob safe inside the script tag.
func EmbedPayload(htmlFile string, payload Payload) error {
	raw, err := os.ReadFile(htmlFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", htmlFile, err)
	}
	content := string(raw)

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	tag := fmt.Sprintf(
		`<script id="assignment-data">window.assignment_data = %s;</script>`,
		string(data),
	)

	if embeddedDataRegex.MatchString(content) {
		content = embeddedDataRegex.ReplaceAllLiteralString(content, tag)
	} else {
		content = strings.Replace(content, "</body>", tag+"\n</body>", 1)
	}

	err = os.WriteFile(htmlFile, []byte(content), 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", htmlFile, err)
	}
	return nil
}
