package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// Column names are matched exactly, including case and inner spaces.
const (
	colClientReferenceNo = "client reference no"
	colBalance           = "balance"
	colStatus            = "status"
	colConsumerName      = "consumer name"
	colConsumerAddress   = "consumer address"
	colSSN               = "ssn"
)

var requiredColumns = []string{
	colClientReferenceNo,
	colBalance,
	colStatus,
	colConsumerName,
	colConsumerAddress,
	colSSN,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// debtRow is one line of an uploaded debt file.
type debtRow struct {
	ClientReferenceNo string `csv:"client reference no"`
	Balance           string `csv:"balance"`
	Status            string `csv:"status"`
	ConsumerName      string `csv:"consumer name"`
	ConsumerAddress   string `csv:"consumer address"`
	SSN               string `csv:"ssn"`
	AgencyID          string `csv:"agency_id"` // optional column
}

func (r *debtRow) trim() {
	r.ClientReferenceNo = strings.TrimSpace(r.ClientReferenceNo)
	r.Balance = strings.TrimSpace(r.Balance)
	r.Status = strings.TrimSpace(r.Status)
	r.ConsumerName = strings.TrimSpace(r.ConsumerName)
	r.ConsumerAddress = strings.TrimSpace(r.ConsumerAddress)
	r.SSN = strings.TrimSpace(r.SSN)
	r.AgencyID = strings.TrimSpace(r.AgencyID)
}

// headerCheckedReader rejects documents whose header lacks a required
// column before gocsv maps any row.
type headerCheckedReader struct {
	*csv.Reader
}

func (r headerCheckedReader) ReadAll() ([][]string, error) {
	records, err := r.Reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed csv: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}
	return records, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}

	var missing []string
	for _, name := range requiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// parseDebtRows decodes the whole document. Structural problems are
// reported before any row is imported.
func parseDebtRows(r io.Reader) ([]debtRow, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	var rows []debtRow
	if err := gocsv.UnmarshalCSV(headerCheckedReader{csv.NewReader(br)}, &rows); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].trim()
	}
	return rows, nil
}
