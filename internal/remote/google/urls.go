package google

import (
	"net/url"
	"strings"
)

// NormalizeFolderID accepts a Drive folder id, a folder URL
// (https://drive.google.com/drive/folders/<id>) or an id followed by a
// query string, and returns the bare id.
func NormalizeFolderID(value string) string {
	v := strings.Trim(strings.TrimSpace(value), `"'`)
	if v == "" {
		return ""
	}
	if strings.Contains(v, "drive.google.com") {
		if u, err := url.Parse(v); err == nil {
			var parts []string
			for _, p := range strings.Split(u.Path, "/") {
				if p != "" {
					parts = append(parts, p)
				}
			}
			for i := 0; i+1 < len(parts); i++ {
				if parts[i] == "folders" {
					return parts[i+1]
				}
			}
		}
	}
	if i := strings.IndexByte(v, '?'); i >= 0 {
		v = v[:i]
	}
	return v
}

// SpreadsheetURL is the browser URL of a spreadsheet.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// FolderURL is the browser URL of the upload folder. A value that already
// is a Drive URL is returned as is; an empty value opens My Drive.
func FolderURL(value string) string {
	v := strings.Trim(strings.TrimSpace(value), `"'`)
	switch {
	case v == "":
		return "https://drive.google.com/drive/my-drive"
	case strings.Contains(v, "drive.google.com"):
		return v
	default:
		return "https://drive.google.com/drive/folders/" + NormalizeFolderID(v)
	}
}

// FileURL is the fallback view link for an uploaded file.
func FileURL(id string) string {
	return "https://drive.google.com/file/d/" + id + "/view"
}

// sheetRange builds an A1 range covering the first two columns of a tab,
// quoting the title as the Sheets API requires.
func sheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A:B"
}
