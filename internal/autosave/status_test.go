package autosave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "saving", StatusSaving.String())
	assert.Equal(t, "saved", StatusSaved.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "offline", StatusOffline.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestStatusModel_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    statusModel
		apply   func(m *statusModel)
		want    Status
		wantMsg string
	}{
		{"begin from idle", statusModel{}, (*statusModel).begin, StatusSaving, ""},
		{"begin clears error", statusModel{StatusError, "boom"}, (*statusModel).begin, StatusSaving, ""},
		{"succeed", statusModel{status: StatusSaving}, (*statusModel).succeed, StatusSaved, ""},
		{"succeed keeps offline", statusModel{status: StatusOffline}, (*statusModel).succeed, StatusOffline, ""},
		{"fail", statusModel{status: StatusSaving}, func(m *statusModel) { m.fail("denied") }, StatusError, "denied"},
		{"fail keeps offline", statusModel{status: StatusOffline}, func(m *statusModel) { m.fail("denied") }, StatusOffline, ""},
		{"offline from saving", statusModel{status: StatusSaving}, (*statusModel).offline, StatusOffline, ""},
		{"online to idle", statusModel{status: StatusOffline}, func(m *statusModel) { m.online(false) }, StatusIdle, ""},
		{"online with attempt", statusModel{status: StatusOffline}, func(m *statusModel) { m.online(true) }, StatusSaving, ""},
		{"online ignored when not offline", statusModel{StatusError, "x"}, func(m *statusModel) { m.online(false) }, StatusError, "x"},
		{"settle saved", statusModel{status: StatusSaved}, func(m *statusModel) { m.settle() }, StatusIdle, ""},
		{"settle ignored otherwise", statusModel{status: StatusSaving}, func(m *statusModel) { m.settle() }, StatusSaving, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.from
			tt.apply(&m)
			assert.Equal(t, tt.want, m.status)
			assert.Equal(t, tt.wantMsg, m.message)
		})
	}
}

func TestStatusModel_SettleReportsChange(t *testing.T) {
	m := statusModel{status: StatusSaved}
	assert.True(t, m.settle())
	assert.False(t, m.settle())
}
