package sessionlog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// csvHeader is the required first row of a CSV session log.
var csvHeader = []string{"equipment", "category", "start", "end"}

type yamlFormat struct{}

func (yamlFormat) Name() string         { return "yaml" }
func (yamlFormat) Extensions() []string { return []string{".yaml", ".yml"} }

func (yamlFormat) Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (yamlFormat) Encode(w io.Writer, records []Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}

type jsonFormat struct{}

func (jsonFormat) Name() string         { return "json" }
func (jsonFormat) Extensions() []string { return []string{".json"} }

func (jsonFormat) Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

func (jsonFormat) Encode(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

type csvFormat struct{}

func (csvFormat) Name() string         { return "csv" }
func (csvFormat) Extensions() []string { return []string{".csv"} }

func (csvFormat) Decode(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected CSV header %v (want %v)", header, csvHeader)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			Equipment: row[0],
			Category:  row[1],
			Start:     row[2],
			End:       row[3],
		})
	}
	return records, nil
}

func (csvFormat) Encode(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Equipment, r.Category, r.Start, r.End}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type msgpackFormat struct{}

func (msgpackFormat) Name() string         { return "msgpack" }
func (msgpackFormat) Extensions() []string { return []string{".msgpack", ".mp"} }

func (msgpackFormat) Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var records []Record
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (msgpackFormat) Encode(w io.Writer, records []Record) error {
	return msgpack.NewEncoder(w).Encode(records)
}
