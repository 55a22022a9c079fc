package report

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// JSON field names of a report record.
const (
	FieldUser           = "user"
	FieldUserInput      = "userInput"
	FieldAvgDomPct      = "avgDomPct"
	FieldScenarioDomPct = "scenarioDomPct"
	FieldOutput         = "output"
)

// Field is one key/value pair of an ordered mapping.
type Field struct {
	Key   string
	Value Value
}

// Section is an ordered mapping, in document order.
type Section []Field

// Scenario holds the stats reported for one scenario.
type Scenario struct {
	Name  string
	Stats Section
}

// Record is one per-user entry of the outputs report.
type Record struct {
	User           Section
	UserInput      Section
	AvgDomPct      Value
	ScenarioDomPct Section
	Output         []Scenario
}

// DecodeError reports a response body that is not valid JSON or does not have
// the shape of an outputs report.
type DecodeError struct {
	Index  int    // record index, -1 for the document itself
	Field  string // offending record field, empty for the document or record
	Reason string
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("decode report: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("decode report: record %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("decode report: record %d: field %q: %s", e.Index, e.Field, e.Reason)
	}
}

// ParseRecords decodes a JSON array of report records. Absent or null sections
// and scenarios decode as empty; a section or scenario of the wrong JSON kind is
// a *DecodeError. Nothing beyond those kinds is validated.
func ParseRecords(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, &DecodeError{Index: -1, Reason: "body is not valid JSON"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, &DecodeError{Index: -1, Reason: fmt.Sprintf("expected a JSON array, got %s", describe(doc))}
	}

	records := make([]Record, 0)
	var err error
	doc.ForEach(func(_, item gjson.Result) bool {
		var rec Record
		rec, err = parseRecord(len(records), item)
		if err != nil {
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func parseRecord(index int, item gjson.Result) (Record, error) {
	var rec Record
	if !item.IsObject() {
		return rec, &DecodeError{Index: index, Reason: fmt.Sprintf("expected an object, got %s", describe(item))}
	}

	var err error
	item.ForEach(func(key, val gjson.Result) bool {
		switch name := key.String(); name {
		case FieldUser:
			rec.User, err = parseSection(index, name, val)
		case FieldUserInput:
			rec.UserInput, err = parseSection(index, name, val)
		case FieldAvgDomPct:
			rec.AvgDomPct = valueOf(val)
		case FieldScenarioDomPct:
			rec.ScenarioDomPct, err = parseSection(index, name, val)
		case FieldOutput:
			rec.Output, err = parseScenarios(index, val)
		}
		return err == nil
	})
	return rec, err
}

func parseSection(index int, name string, val gjson.Result) (Section, error) {
	if val.Type == gjson.Null {
		return nil, nil
	}
	if !val.IsObject() {
		return nil, &DecodeError{Index: index, Field: name, Reason: fmt.Sprintf("expected an object, got %s", describe(val))}
	}
	var sec Section
	val.ForEach(func(k, v gjson.Result) bool {
		sec = append(sec, Field{Key: k.String(), Value: valueOf(v)})
		return true
	})
	return sec, nil
}

// parseScenarios reads scenario -> stats. A null scenario has no stats; any
// other non-object scenario is a *DecodeError.
func parseScenarios(index int, val gjson.Result) ([]Scenario, error) {
	if val.Type == gjson.Null {
		return nil, nil
	}
	if !val.IsObject() {
		return nil, &DecodeError{Index: index, Field: FieldOutput, Reason: fmt.Sprintf("expected an object, got %s", describe(val))}
	}
	var (
		scenarios []Scenario
		err       error
	)
	val.ForEach(func(k, v gjson.Result) bool {
		s := Scenario{Name: k.String()}
		switch {
		case v.Type == gjson.Null:
		case v.IsObject():
			v.ForEach(func(sk, sv gjson.Result) bool {
				s.Stats = append(s.Stats, Field{Key: sk.String(), Value: valueOf(sv)})
				return true
			})
		default:
			err = &DecodeError{Index: index, Field: FieldOutput,
				Reason: fmt.Sprintf("scenario %q: expected an object, got %s", s.Name, describe(v))}
			return false
		}
		scenarios = append(scenarios, s)
		return true
	})
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}
