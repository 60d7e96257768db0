package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIncidentRecord_KeepsFieldOrder(t *testing.T) {
	fields := []string{"sys_id", "short_description", "state"}
	rec := NewIncidentRecord(fields, map[string]string{
		"sys_id":            "1",
		"short_description": "VPN down",
		"state":             "1",
	})

	assert.Equal(t, fields, rec.Fields)
	assert.Equal(t, "1", rec.SysID())
	assert.Equal(t, "VPN down", rec.Value("short_description"))
}

func TestNewIncidentRecord_MissingValueBecomesEmpty(t *testing.T) {
	rec := NewIncidentRecord([]string{"sys_id", "priority"}, map[string]string{"sys_id": "2"})

	assert.Equal(t, "", rec.Value("priority"))
	assert.Len(t, rec.Values, 2)
}

func TestIncidentRecord_Value_UnknownField(t *testing.T) {
	rec := NewIncidentRecord([]string{"sys_id"}, map[string]string{"sys_id": "3"})

	assert.Equal(t, "", rec.Value("does_not_exist"))
}

func TestIncidentRecord_HasSchema(t *testing.T) {
	rec := NewIncidentRecord([]string{"sys_id", "state"}, map[string]string{"sys_id": "1", "state": "2"})

	assert.True(t, rec.HasSchema([]string{"sys_id", "state"}))
	assert.True(t, rec.HasSchema([]string{"state", "sys_id"}), "order must not matter")
	assert.False(t, rec.HasSchema([]string{"sys_id"}))
	assert.False(t, rec.HasSchema([]string{"sys_id", "priority"}))
}
