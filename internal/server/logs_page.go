package server

import (
	"strings"

	"vehicle_log/internal/format"
	"vehicle_log/internal/report"
)

var logColumns = []string{"City", "Sr No", "VRN", "Model", "Entry Date", "In Time", "Out Date", "Out Time", "Remarks"}

// renderLogsPage lays the records out as a single HTML table. Every value
// that came from a user goes through EscapeHTML.
func renderLogsPage(records []report.Record, filterDate string) string {
	title := "Vehicle Reports"
	if filterDate != "" {
		title = "Vehicle Reports for " + filterDate
	}

	var sb strings.Builder
	sb.WriteString(logsPageHead)
	sb.WriteString("<title>")
	sb.WriteString(format.EscapeHTML(title))
	sb.WriteString("</title>\n</head>\n<body>\n<h1>")
	sb.WriteString(format.EscapeHTML(title))
	sb.WriteString("</h1>\n")

	if len(records) == 0 {
		sb.WriteString("<p class=\"empty\">No records found.</p>\n</body>\n</html>\n")
		return sb.String()
	}

	sb.WriteString("<table>\n<thead><tr>")
	for _, c := range logColumns {
		sb.WriteString("<th>" + c + "</th>")
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")

	for _, r := range records {
		cells := []string{
			r.City,
			r.Serial,
			r.VRN,
			r.Model,
			r.EntryDate,
			format.FormatTime12(r.EntryTime),
			r.ExitDate,
			format.FormatTime12(r.ExitTime),
			string(r.Remarks),
		}
		sb.WriteString("<tr>")
		for _, c := range cells {
			sb.WriteString("<td>")
			sb.WriteString(format.EscapeHTML(c))
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n</body>\n</html>\n")
	return sb.String()
}

const logsPageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 20px; color: #333; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ddd; padding: 6px 10px; text-align: left; }
    th { background: #f5f5f5; }
    .empty { color: #666; }
</style>
`
