package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

func TestParsePrincipalID(t *testing.T) {
	t.Run("round trips a canonical UUID", func(t *testing.T) {
		id := NewPrincipalID()
		parsed, err := ParsePrincipalID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	for name, input := range map[string]string{
		"empty":     "",
		"malformed": "not-a-uuid",
		"nil uuid":  "00000000-0000-0000-0000-000000000000",
	} {
		t.Run(name+" rejected", func(t *testing.T) {
			_, err := ParsePrincipalID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestIDJSONRepresentation(t *testing.T) {
	id := NewNotificationID()

	b, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(b), "ids marshal as canonical strings")

	var back NotificationID
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, id, back)
}

func TestParseReportID(t *testing.T) {
	t.Run("opaque values pass", func(t *testing.T) {
		id, err := ParseReportID("report-42")
		require.NoError(t, err)
		assert.Equal(t, ReportID("report-42"), id)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ParseReportID("")
		require.Error(t, err)
	})

	t.Run("oversized rejected", func(t *testing.T) {
		long := make([]byte, maxReportIDLen+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err := ParseReportID(string(long))
		require.Error(t, err)
	})
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"reporter", "government", "admin"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.True(t, role.IsValid())
	}

	_, err := ParseRole("mayor")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestParseNotificationType(t *testing.T) {
	t.Run("empty defaults to info", func(t *testing.T) {
		typ, err := ParseNotificationType("")
		require.NoError(t, err)
		assert.Equal(t, TypeInfo, typ)
	})

	t.Run("unknown rejected", func(t *testing.T) {
		_, err := ParseNotificationType("telegram")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
