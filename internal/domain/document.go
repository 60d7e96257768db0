package domain

// Document is the retrievable rendering of one incident record. Created
// during index construction and immutable afterward.
type Document struct {
	// ID equals the source record's sys_id.
	ID string
	// Text is the deterministic textual rendering of the record's fields.
	Text string
	// Record is the source record the document was derived from.
	Record IncidentRecord
}
