package export

import (
	"bytes"
	"encoding/csv"
	"net/url"
	"strconv"

	"roster/internal/domain/member"
)

// Download constants for the member list export.
const (
	FileName    = "members_list.csv"
	ContentType = "text/csv; charset=utf-8"
	dataURIHead = "data:text/csv;charset=utf-8,"
)

// Header is the first CSV record.
var Header = []string{"ID", "Name", "Email", "Role"}

// File is a generated export ready for download.
type File struct {
	Name        string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	DataURI     string `json:"data_uri"`
}

// MembersCSV serializes members as CSV, numbering rows 1..N in list order.
// Fields holding commas, quotes or newlines are quoted per RFC 4180.
// PRE: members is the full, unfiltered list
// POST: Returns header + one record per member joined by "\n", without a trailing newline
func MembersCSV(members []member.Member) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for i, m := range members {
		if err := w.Write([]string{strconv.Itoa(i + 1), m.Name, m.Email, m.Role}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DataURI encodes a CSV payload as a data: URI.
// POST: the payload round-trips through url.PathUnescape
func DataURI(payload []byte) string {
	return dataURIHead + url.PathEscape(string(payload))
}

// NewFile builds the downloadable export for members.
// PRE: members is the full, unfiltered list
// POST: Returns a File named FileName carrying both raw bytes and a data URI
func NewFile(members []member.Member) (File, error) {
	data, err := MembersCSV(members)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        FileName,
		ContentType: ContentType,
		Data:        data,
		DataURI:     DataURI(data),
	}, nil
}
