package enums

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{"new", "new", StatusNew, false},
		{"active", "active", StatusActive, false},
		{"success", "success", StatusSuccess, false},
		{"failed", "failed", StatusFailed, false},
		{"uppercase", "NEW", StatusNew, false},
		{"mixed case", "Success", StatusSuccess, false},
		{"surrounding spaces", "  failed ", StatusFailed, false},
		{"unknown", "bogus", Status{}, true},
		{"empty", "", Status{}, true},
		{"close but wrong", "successful", Status{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid status")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "new", StatusNew.String())
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

func TestStatusValues(t *testing.T) {
	vals := StatusValues()
	require.Len(t, vals, 4)
	assert.Equal(t, []Status{StatusNew, StatusActive, StatusSuccess, StatusFailed}, vals)
}

func TestStatus_JSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(StatusActive)
		require.NoError(t, err)
		assert.Equal(t, `"active"`, string(data))
	})

	t.Run("marshal zero value fails", func(t *testing.T) {
		_, err := json.Marshal(Status{})
		assert.Error(t, err)
	})

	t.Run("unmarshal", func(t *testing.T) {
		var s Status
		err := json.Unmarshal([]byte(`"failed"`), &s)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, s)
	})

	t.Run("unmarshal invalid", func(t *testing.T) {
		var s Status
		err := json.Unmarshal([]byte(`"bogus"`), &s)
		assert.Error(t, err)
	})
}

func TestStatus_DatabaseRoundTrip(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		v, err := StatusSuccess.Value()
		require.NoError(t, err)
		assert.Equal(t, "success", v)
	})

	t.Run("value of zero value fails", func(t *testing.T) {
		_, err := Status{}.Value()
		assert.Error(t, err)
	})

	t.Run("scan string", func(t *testing.T) {
		var s Status
		require.NoError(t, s.Scan("active"))
		assert.Equal(t, StatusActive, s)
	})

	t.Run("scan bytes", func(t *testing.T) {
		var s Status
		require.NoError(t, s.Scan([]byte("new")))
		assert.Equal(t, StatusNew, s)
	})

	t.Run("scan invalid value", func(t *testing.T) {
		var s Status
		assert.Error(t, s.Scan("bogus"))
	})

	t.Run("scan unsupported type", func(t *testing.T) {
		var s Status
		assert.Error(t, s.Scan(42))
	})
}
