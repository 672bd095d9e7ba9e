package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/stemma/pkg/tree"
)

// Records is the input format: individuals and unions linked by ID.
type Records struct {
	Individuals []Individual `json:"individuals" bson:"individuals"`
	Unions      []Union      `json:"unions" bson:"unions"`
}

// Individual is a person record.
type Individual struct {
	ID      string   `json:"id" bson:"id"`
	Name    string   `json:"name,omitempty" bson:"name,omitempty"`
	Birth   string   `json:"birth,omitempty" bson:"birth,omitempty"` // Free-text date
	Sex     string   `json:"sex,omitempty" bson:"sex,omitempty"` // "M" or "F"; orders union partners
	ChildOf string   `json:"child_of,omitempty" bson:"child_of,omitempty"`
	Founded []string `json:"founded,omitempty" bson:"founded,omitempty"`
}

// DisplayLabel returns the name if set, otherwise the ID.
func (i *Individual) DisplayLabel() string {
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}

// Union is a partnership record.
type Union struct {
	ID       string   `json:"id" bson:"id"`
	Partners []string `json:"partners,omitempty" bson:"partners,omitempty"` // Father side first, see Records.ToTree
	Children []string `json:"children,omitempty" bson:"children,omitempty"`
	Date     string   `json:"date,omitempty" bson:"date,omitempty"` // Free-text start date
}

// ToTree builds the descent graph. Dangling references are returned as
// warnings; duplicate or empty IDs are errors.
//
// The first partner of a union is its father side. When both partners
// carry a sex and the list has the female partner first, the two are
// swapped; otherwise list order decides.
func (r Records) ToTree() (*tree.Tree, []tree.Warning, error) {
	sex := make(map[string]string, len(r.Individuals))
	inds := make([]tree.IndividualRecord, len(r.Individuals))
	for i := range r.Individuals {
		ind := &r.Individuals[i]
		sex[ind.ID] = normalizeSex(ind.Sex)
		inds[i] = tree.IndividualRecord{
			Key:     ind.ID,
			Label:   ind.DisplayLabel(),
			Birth:   ind.Birth,
			ChildOf: ind.ChildOf,
			Founded: ind.Founded,
			Source:  ind,
		}
	}
	unions := make([]tree.UnionRecord, len(r.Unions))
	for i := range r.Unions {
		u := &r.Unions[i]
		unions[i] = tree.UnionRecord{
			Key:      u.ID,
			Partners: fatherFirst(u.Partners, sex),
			Children: u.Children,
			Date:     u.Date,
			Source:   u,
		}
	}
	return tree.Build(inds, unions)
}

// fatherFirst returns partners with the male partner in slot 0 when both
// sexes are known and the list has them the other way round. The input
// slice is not modified.
func fatherFirst(partners []string, sex map[string]string) []string {
	if len(partners) != 2 || sex[partners[0]] != "F" || sex[partners[1]] != "M" {
		return partners
	}
	return []string{partners[1], partners[0]}
}

func normalizeSex(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	}
	return ""
}

// MarshalRecords converts records to indented JSON bytes.
func MarshalRecords(r Records) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadRecords decodes records from an io.Reader.
func ReadRecords(r io.Reader) (Records, error) {
	var recs Records
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return Records{}, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

// ReadRecordsFile reads records from a JSON file.
func ReadRecordsFile(path string) (Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return Records{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
