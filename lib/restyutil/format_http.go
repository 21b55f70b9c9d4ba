package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// maxDumpBody bounds each body written to a dump, listing pages can be
// several megabytes.
const maxDumpBody = 256 << 10

func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, value := range headers[key] {
			fmt.Fprintf(out, "%s: %s\n", key, value)
		}
	}
}

func writeBody(out *strings.Builder, body string) {
	if body == "" {
		out.WriteString("<NO BODY>\n")
		return
	}
	if len(body) > maxDumpBody {
		fmt.Fprintf(out, "%s\n<TRUNCATED %d BYTES>\n", body[:maxDumpBody], len(body)-maxDumpBody)
		return
	}
	out.WriteString(body)
	out.WriteString("\n")
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<FAILED TO GET BODY: %s>", err)
	}
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<FAILED TO READ BODY: %s>", err)
	}
	return string(contents)
}

// formatHttpMessage renders a request/response pair as plain text, headers
// are sorted so dumps of the same exchange diff cleanly.
func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	requestURL := res.Request.URL
	if res.Request.RawRequest != nil {
		requestURL = res.Request.RawRequest.URL.String()
	}
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, requestURL)
	if res.Request.RawRequest != nil {
		writeHeaders(&out, res.Request.RawRequest.Header)
	}
	out.WriteString("\n")
	writeBody(&out, requestBody(res.Request.RawRequest))

	out.WriteString("\n---- RESPONSE ----\n\n")
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), requestURL)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	writeBody(&out, res.String())

	return out.String()
}
