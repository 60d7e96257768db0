package domain

// FieldSysID is the unique identifier field every incident record carries.
const FieldSysID = "sys_id"

// IncidentRecord is a single ticket fetched from the upstream ticketing
// system. The field schema is decided upstream at fetch time, so records
// carry an explicit ordered field list instead of a fixed struct. Within one
// snapshot every record is expected to share the same field set.
type IncidentRecord struct {
	// Fields holds the canonical field order for this record. Rendering and
	// serialization iterate Fields, never the map, so output is deterministic.
	Fields []string
	Values map[string]string
}

// NewIncidentRecord builds a record from an ordered field list and values.
// Fields missing from values are kept with an empty string value.
func NewIncidentRecord(fields []string, values map[string]string) IncidentRecord {
	vals := make(map[string]string, len(fields))
	for _, f := range fields {
		vals[f] = values[f]
	}
	return IncidentRecord{Fields: fields, Values: vals}
}

// Value returns the value for the named field, or "" if absent.
func (r IncidentRecord) Value(name string) string {
	return r.Values[name]
}

// SysID returns the record's unique identifier.
func (r IncidentRecord) SysID() string {
	return r.Values[FieldSysID]
}

// HasSchema reports whether the record carries exactly the given field set,
// in any order.
func (r IncidentRecord) HasSchema(fields []string) bool {
	if len(r.Fields) != len(fields) {
		return false
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range r.Fields {
		seen[f] = true
	}
	for _, f := range fields {
		if !seen[f] {
			return false
		}
	}
	return true
}
